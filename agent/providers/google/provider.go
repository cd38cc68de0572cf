// Package google registers the "google" provider (aliased "gemini"),
// driving the Gemini API through google.golang.org/genai.
package google

import (
	"context"

	"google.golang.org/genai"

	"github.com/taipm/agentic/agent"
)

func init() {
	agent.Providers.Register(agent.Provider{
		Name:        "google",
		DisplayName: "Google Gemini",
		Aliases:     []string{"gemini"},
		APIKeyName:  "GEMINI_API_KEY",
		DefaultChat: "gemini-1.5-pro-latest",
		Capabilities: []agent.Capability{
			agent.CapabilityChat,
			agent.CapabilityMultiToolCalls,
			agent.CapabilityVision,
		},
		NewChatModel: NewChatModel,
	})
}

func newClient(ctx context.Context, cfg agent.ModelConfig) (*genai.Client, error) {
	return genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
}
