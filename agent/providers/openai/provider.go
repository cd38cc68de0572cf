// Package openai registers the "openai" provider, driving OpenAI's chat
// completions API (and any OpenAI-compatible endpoint reachable by
// overriding the base URL) through github.com/openai/openai-go/v3.
package openai

import (
	"context"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/taipm/agentic/agent"
)

func init() {
	agent.Providers.Register(agent.Provider{
		Name:        "openai",
		DisplayName: "OpenAI",
		APIKeyName:  "OPENAI_API_KEY",
		BaseURL:     "https://api.openai.com/v1",
		DefaultChat: "gpt-4o",
		DefaultEmbed: "text-embedding-3-small",
		Capabilities: []agent.Capability{
			agent.CapabilityChat,
			agent.CapabilityEmbeddings,
			agent.CapabilityMultiToolCalls,
			agent.CapabilityTypedOutput,
			agent.CapabilityTypedOutputWithTools,
			agent.CapabilityVision,
		},
		NewChatModel:       NewChatModel,
		NewEmbeddingsModel: NewEmbeddingsModel,
		ListModels:         listModels,
	})
}

func newClient(cfg agent.ModelConfig) openaisdk.Client {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return openaisdk.NewClient(opts...)
}

func listModels(ctx context.Context, cfg agent.ModelConfig) ([]string, error) {
	client := newClient(cfg)
	page, err := client.Models.List(ctx)
	if err != nil {
		return nil, agent.WrapNetworkError("openai", err)
	}
	names := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		names = append(names, m.ID)
	}
	return names, nil
}
