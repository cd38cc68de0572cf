package openai

import (
	"context"

	openaisdk "github.com/openai/openai-go/v3"

	"github.com/taipm/agentic/agent"
)

type embeddingsModel struct {
	client openaisdk.Client
	model  string
}

// NewEmbeddingsModel constructs an OpenAI-backed agent.EmbeddingsModel.
func NewEmbeddingsModel(cfg agent.ModelConfig) (agent.EmbeddingsModel, error) {
	return &embeddingsModel{client: newClient(cfg), model: cfg.Model}, nil
}

func (m *embeddingsModel) Close() error { return nil }

func (m *embeddingsModel) EmbedQuery(ctx context.Context, text string) (agent.EmbeddingsResult, error) {
	batch, err := m.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return agent.EmbeddingsResult{}, err
	}
	return agent.EmbeddingsResult{Embedding: batch.Embeddings[0], Usage: batch.Usage}, nil
}

func (m *embeddingsModel) EmbedDocuments(ctx context.Context, texts []string) (agent.BatchEmbeddingsResult, error) {
	resp, err := m.client.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Model: openaisdk.EmbeddingModel(m.model),
		Input: openaisdk.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
	})
	if err != nil {
		return agent.BatchEmbeddingsResult{}, agent.WrapNetworkError("openai", err)
	}

	embeddings := make([][]float64, len(resp.Data))
	for i, d := range resp.Data {
		embeddings[i] = d.Embedding
	}
	prompt := int(resp.Usage.PromptTokens)
	total := int(resp.Usage.TotalTokens)
	return agent.BatchEmbeddingsResult{
		Embeddings: embeddings,
		Usage:      agent.Usage{PromptTokens: &prompt, TotalTokens: &total},
	}, nil
}
