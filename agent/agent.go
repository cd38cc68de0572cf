package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/taipm/agentic/agent/ratelimit"
	"github.com/taipm/agentic/agent/schema"
)

// Agent is the user-facing facade binding a provider, a tool set, and a
// conversation method. It holds no conversational state beyond its tool
// bindings: history is always a parameter, the caller owns it.
type Agent struct {
	modelString ModelString

	registry      *Registry
	env           *Environment
	logger        Logger
	maxIterations int
	executor      ToolExecutor
	limiter       ratelimit.Limiter
	apiKey        string
	baseURL       string
	tools         ToolSet

	mu             sync.Mutex
	provider       Provider
	chatModelCache ChatModel
}

// New constructs an Agent for the given model string (see ParseModelString).
// The provider is resolved and validated immediately, but the underlying
// ChatModel is constructed lazily on first use, per the core spec's
// lazy-resolution rule: a missing API key fails at first Send*, not here.
func New(modelString string, opts ...Option) (*Agent, error) {
	ms, err := ParseModelString(modelString)
	if err != nil {
		return nil, err
	}

	a := &Agent{
		modelString:   ms,
		registry:      Providers,
		env:           NewEnvironment(),
		logger:        NoopLogger{},
		maxIterations: DefaultMaxIterations,
		executor:      DefaultToolExecutor{},
		limiter:       ratelimit.NoLimit(),
	}
	for _, opt := range opts {
		opt(a)
	}

	provider, err := a.registry.Get(ms.Provider)
	if err != nil {
		return nil, err
	}
	a.provider = provider
	return a, nil
}

// chatModel lazily constructs and caches this Agent's ChatModel.
func (a *Agent) chatModel() (ChatModel, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.chatModelCache != nil {
		return a.chatModelCache, nil
	}

	if a.provider.NewChatModel == nil {
		return nil, &ConfigurationError{
			Message: fmt.Sprintf("provider %q does not support chat", a.provider.Name),
			Fix:     "use a provider registered with a chat capability",
		}
	}

	apiKey := a.env.ResolveAPIKey(a.apiKey, a.provider.APIKeyName)
	if apiKey == "" && a.provider.APIKeyName != "" {
		return nil, &ConfigurationError{
			Message: fmt.Sprintf("no API key resolved for provider %q (expected env var %q)", a.provider.Name, a.provider.APIKeyName),
			Fix:     fmt.Sprintf("set the %s environment variable, call agent.WithAPIKey, or populate the Agent's Environment", a.provider.APIKeyName),
		}
	}

	baseURL := a.baseURL
	if baseURL == "" {
		baseURL = a.provider.BaseURL
	}
	model := a.modelString.ChatModel
	if model == "" {
		model = a.provider.DefaultChat
	}

	cm, err := a.provider.NewChatModel(ModelConfig{APIKey: apiKey, BaseURL: baseURL, Model: model, Logger: a.logger})
	if err != nil {
		return nil, err
	}
	a.chatModelCache = cm
	return cm, nil
}

// embeddingsModel lazily constructs this Agent's EmbeddingsModel. It is not
// cached on the Agent since embeddings and chat are typically used
// independently and a fresh model avoids holding two live clients when
// only one is ever used.
func (a *Agent) embeddingsModel() (EmbeddingsModel, error) {
	if a.provider.NewEmbeddingsModel == nil {
		return nil, &ConfigurationError{
			Message: fmt.Sprintf("provider %q does not support embeddings", a.provider.Name),
			Fix:     "use a provider registered with an embeddings capability",
		}
	}
	apiKey := a.env.ResolveAPIKey(a.apiKey, a.provider.APIKeyName)
	if apiKey == "" && a.provider.APIKeyName != "" {
		return nil, &ConfigurationError{
			Message: fmt.Sprintf("no API key resolved for provider %q", a.provider.Name),
			Fix:     fmt.Sprintf("set the %s environment variable or call agent.WithAPIKey", a.provider.APIKeyName),
		}
	}
	model := a.modelString.EmbedModel
	if model == "" {
		model = a.provider.DefaultEmbed
	}
	baseURL := a.baseURL
	if baseURL == "" {
		baseURL = a.provider.BaseURL
	}
	return a.provider.NewEmbeddingsModel(ModelConfig{APIKey: apiKey, BaseURL: baseURL, Model: model, Logger: a.logger})
}

// Close releases the Agent's cached ChatModel, if one was constructed.
func (a *Agent) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.chatModelCache == nil {
		return nil
	}
	err := a.chatModelCache.Close()
	a.chatModelCache = nil
	return err
}

func (a *Agent) deps() OrchestratorDeps {
	return OrchestratorDeps{Executor: a.executor, Logger: a.logger, MaxIterations: a.maxIterations}
}

func (a *Agent) newState(prompt string, cfg sendConfig) *StreamingState {
	history := append([]Message(nil), cfg.history...)
	history = append(history, User(prompt))
	return NewStreamingState(history, cfg.tools)
}

// SendStream opens a streaming conversation turn and returns the raw
// orchestrator event channel. Most callers want Send or SendFor; SendStream
// is for callers that need incremental text chunks.
func (a *Agent) SendStream(ctx context.Context, prompt string, opts ...SendOption) (<-chan IterationEvent, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, &CancellationError{Err: err}
	}
	model, err := a.chatModel()
	if err != nil {
		return nil, err
	}
	cfg := resolveSendConfig(a.tools, opts)
	state := a.newState(prompt, cfg)
	return DefaultStreamingOrchestrator{}.Run(ctx, model, state, a.deps()), nil
}

// Send drives a conversation turn to completion, returning the accumulated
// text output and the messages newly appended to history (prompt onward).
func (a *Agent) Send(ctx context.Context, prompt string, opts ...SendOption) (ChatResult[string], error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return ChatResult[string]{}, &CancellationError{Err: err}
	}
	model, err := a.chatModel()
	if err != nil {
		return ChatResult[string]{}, err
	}
	cfg := resolveSendConfig(a.tools, opts)
	state := a.newState(prompt, cfg)
	startLen := len(state.History) - 1 // exclude the prompt message we just added

	var text string
	events := DefaultStreamingOrchestrator{}.Run(ctx, model, state, a.deps())
	var final IterationEvent
	for ev := range events {
		if ev.Kind == EventTextChunk {
			text += ev.Text
		}
		if ev.Kind == EventDone {
			final = ev
		}
	}
	if final.Err != nil {
		return ChatResult[string]{}, final.Err
	}

	return ChatResult[string]{
		Output:       text,
		Messages:     append([]Message(nil), state.History[startLen:]...),
		FinishReason: final.FinishReason,
		Metadata:     final.Metadata,
		Usage:        final.Usage,
	}, nil
}

// SendFor drives a typed-output conversation turn to completion, selecting
// the native or return_result-tool strategy per the provider's declared
// capabilities, and deserializing the result with fromJSON.
func SendFor[T any](ctx context.Context, a *Agent, prompt string, outputSchema *schema.Schema, fromJSON func([]byte) (T, error), opts ...SendOption) (ChatResult[T], error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return ChatResult[T]{}, &CancellationError{Err: err}
	}
	model, err := a.chatModel()
	if err != nil {
		return ChatResult[T]{}, err
	}
	cfg := resolveSendConfig(a.tools, opts)
	state := a.newState(prompt, cfg)
	startLen := len(state.History) - 1

	strategy := ChooseTypedOutputStrategy(a.provider, len(cfg.tools) > 0)
	orch := TypedOutputStreamingOrchestrator{OutputSchema: outputSchema, Strategy: strategy}

	var final IterationEvent
	for ev := range orch.Run(ctx, model, state, a.deps()) {
		if ev.Kind == EventDone {
			final = ev
		}
	}
	if final.Err != nil {
		return ChatResult[T]{}, final.Err
	}

	typed, err := fromJSON([]byte(final.Text))
	if err != nil {
		return ChatResult[T]{}, WrapProtocolError(a.provider.Name, "typed output did not deserialize", err)
	}

	return ChatResult[T]{
		Output:       typed,
		Messages:     append([]Message(nil), state.History[startLen:]...),
		FinishReason: final.FinishReason,
		Metadata:     final.Metadata,
		Usage:        final.Usage,
	}, nil
}

// JSONInto is a convenience fromJSON implementation for SendFor callers who
// just want encoding/json's default decoding into T.
func JSONInto[T any](data []byte) (T, error) {
	var v T
	err := json.Unmarshal(data, &v)
	return v, err
}

// EmbedQuery embeds a single piece of text.
func (a *Agent) EmbedQuery(ctx context.Context, text string) (EmbeddingsResult, error) {
	m, err := a.embeddingsModel()
	if err != nil {
		return EmbeddingsResult{}, err
	}
	defer m.Close()
	return m.EmbedQuery(ctx, text)
}

// EmbedDocuments embeds a batch of documents in one call.
func (a *Agent) EmbedDocuments(ctx context.Context, texts []string) (BatchEmbeddingsResult, error) {
	m, err := a.embeddingsModel()
	if err != nil {
		return BatchEmbeddingsResult{}, err
	}
	defer m.Close()
	return m.EmbedDocuments(ctx, texts)
}
