// Package anthropic registers the "anthropic" provider (aliased "claude"),
// driving Anthropic's Messages API through
// github.com/anthropics/anthropic-sdk-go.
package anthropic

import (
	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/taipm/agentic/agent"
)

func init() {
	agent.Providers.Register(agent.Provider{
		Name:        "anthropic",
		DisplayName: "Anthropic",
		Aliases:     []string{"claude"},
		APIKeyName:  "ANTHROPIC_API_KEY",
		DefaultChat: "claude-sonnet-4-5",
		Capabilities: []agent.Capability{
			agent.CapabilityChat,
			agent.CapabilityMultiToolCalls,
			agent.CapabilityVision,
		},
		NewChatModel: NewChatModel,
	})
}

func newClient(cfg agent.ModelConfig) sdk.Client {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return sdk.NewClient(opts...)
}
