// Package openaicompat registers providers that speak the OpenAI chat
// completions wire format behind a different base URL: OpenRouter,
// Together AI, Mistral, Cohere, and a local Ollama server. Each reuses the openai
// package's mapper and streaming loop verbatim — the wire format is
// identical, only the endpoint, key, and default model differ.
package openaicompat

import (
	"context"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/taipm/agentic/agent"
	"github.com/taipm/agentic/agent/providers/openai"
)

func init() {
	for _, p := range compatProviders {
		agent.Providers.Register(p)
	}
}

var compatProviders = []agent.Provider{
	{
		Name:        "openrouter",
		DisplayName: "OpenRouter",
		APIKeyName:  "OPENROUTER_API_KEY",
		BaseURL:     "https://openrouter.ai/api/v1",
		DefaultChat: "openrouter/auto",
		Capabilities: []agent.Capability{
			agent.CapabilityChat,
			agent.CapabilityMultiToolCalls,
			agent.CapabilityVision,
		},
		NewChatModel: openai.NewChatModel,
		ListModels:   listModels,
	},
	{
		Name:        "together",
		DisplayName: "Together AI",
		APIKeyName:  "TOGETHER_API_KEY",
		BaseURL:     "https://api.together.xyz/v1",
		DefaultChat: "meta-llama/Llama-3.3-70B-Instruct-Turbo",
		Capabilities: []agent.Capability{
			agent.CapabilityChat,
			agent.CapabilityEmbeddings,
			agent.CapabilityMultiToolCalls,
		},
		NewChatModel:       openai.NewChatModel,
		NewEmbeddingsModel: openai.NewEmbeddingsModel,
		ListModels:         listModels,
	},
	{
		Name:        "mistral",
		DisplayName: "Mistral AI",
		APIKeyName:  "MISTRAL_API_KEY",
		BaseURL:     "https://api.mistral.ai/v1",
		DefaultChat: "mistral-large-latest",
		Capabilities: []agent.Capability{
			agent.CapabilityChat,
			agent.CapabilityEmbeddings,
			agent.CapabilityMultiToolCalls,
		},
		NewChatModel:       openai.NewChatModel,
		NewEmbeddingsModel: openai.NewEmbeddingsModel,
		ListModels:         listModels,
	},
	{
		Name:        "cohere",
		DisplayName: "Cohere",
		APIKeyName:  "COHERE_API_KEY",
		BaseURL:     "https://api.cohere.ai/compatibility/v1",
		DefaultChat: "command-r-plus",
		Capabilities: []agent.Capability{
			agent.CapabilityChat,
			agent.CapabilityEmbeddings,
			agent.CapabilityMultiToolCalls,
		},
		NewChatModel:       openai.NewChatModel,
		NewEmbeddingsModel: openai.NewEmbeddingsModel,
		ListModels:         listModels,
	},
	{
		// Ollama's OpenAI-compatible surface needs no API key; the local
		// server accepts any non-empty Authorization header, so a
		// placeholder key is supplied instead of requiring an env var.
		Name:        "ollama",
		DisplayName: "Ollama (local)",
		BaseURL:     "http://localhost:11434/v1",
		DefaultChat: "llama3.2",
		Capabilities: []agent.Capability{
			agent.CapabilityChat,
			agent.CapabilityMultiToolCalls,
		},
		NewChatModel: newOllamaChatModel,
		ListModels:   listModels,
	},
}

func newOllamaChatModel(cfg agent.ModelConfig) (agent.ChatModel, error) {
	if cfg.APIKey == "" {
		cfg.APIKey = "ollama"
	}
	return openai.NewChatModel(cfg)
}

func listModels(ctx context.Context, cfg agent.ModelConfig) ([]string, error) {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openaisdk.NewClient(opts...)
	page, err := client.Models.List(ctx)
	if err != nil {
		return nil, agent.WrapNetworkError("openaicompat", err)
	}
	names := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		names = append(names, m.ID)
	}
	return names, nil
}
