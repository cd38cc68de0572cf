package agent

import (
	"context"

	"github.com/taipm/agentic/agent/schema"
)

// Capability is an informational tag describing a feature a Provider's
// models may support. Capabilities are never enforced by the core — they
// exist for test filtering and caller feature-detection via
// Providers.AllWith.
type Capability string

const (
	CapabilityChat                 Capability = "chat"
	CapabilityEmbeddings           Capability = "embeddings"
	CapabilityMultiToolCalls       Capability = "multiToolCalls"
	CapabilityTypedOutput          Capability = "typedOutput"
	CapabilityTypedOutputWithTools Capability = "typedOutputWithTools"
	CapabilityVision               Capability = "vision"
)

// ModelOptions carries the per-call knobs a ChatModel.SendStream
// implementation may honor: the active tool set, an optional typed-output
// schema, and provider-specific extras.
type ModelOptions struct {
	Tools        ToolSet
	OutputSchema *schema.Schema
	Extra        map[string]any
}

// ChatModel is the per-conversation handle a Provider constructs. It is the
// seam every provider mapper (OpenAI, Anthropic, Google, OpenAI-compatible)
// implements; the orchestrator only ever talks to this interface.
type ChatModel interface {
	// SendStream opens a streaming request for the given history and
	// returns a channel of frames. The channel is closed when the stream
	// ends (naturally or via ctx cancellation); a send error surfaces as
	// the final ChatStreamResult's error via the returned error channel
	// semantics documented on StreamChunk.
	SendStream(ctx context.Context, history []Message, opts ModelOptions) (<-chan StreamChunk, error)

	// Close releases any resources (HTTP clients, connections) the model
	// holds. Called by the Agent when the model is no longer needed.
	Close() error
}

// StreamChunk is one element of a ChatModel's stream: either a frame or a
// terminal error, never both.
type StreamChunk struct {
	Result ChatStreamResult
	Err    error
}

// EmbeddingsModel is the minimal embeddings seam named in the core spec —
// implementations beyond this interface are out of scope.
type EmbeddingsModel interface {
	EmbedQuery(ctx context.Context, text string) (EmbeddingsResult, error)
	EmbedDocuments(ctx context.Context, texts []string) (BatchEmbeddingsResult, error)
	Close() error
}

// Provider is a named backend with capabilities, a default model set, and
// factory methods for chat/embeddings models. Provider values are
// constructed once at registration time and treated as immutable
// thereafter (see agent/registry.go).
type Provider struct {
	Name         string
	DisplayName  string
	Aliases      []string
	APIKeyName   string
	BaseURL      string
	DefaultChat  string
	DefaultEmbed string
	Capabilities []Capability

	NewChatModel       func(cfg ModelConfig) (ChatModel, error)
	NewEmbeddingsModel func(cfg ModelConfig) (EmbeddingsModel, error)
	ListModels         func(ctx context.Context, cfg ModelConfig) ([]string, error)
}

// ModelConfig is what a Provider factory needs to construct a model:
// resolved credentials plus the specific model name to target.
type ModelConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  Logger
}

// HasCapability reports whether p declares the given capability.
func (p Provider) HasCapability(c Capability) bool {
	for _, have := range p.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}
