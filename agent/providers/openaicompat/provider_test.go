package openaicompat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taipm/agentic/agent"
)

func TestCompatProviders_HaveBaseURLAndDefaultModel(t *testing.T) {
	for _, p := range compatProviders {
		t.Run(p.Name, func(t *testing.T) {
			assert.NotEmpty(t, p.BaseURL)
			assert.NotEmpty(t, p.DefaultChat)
			require.NotNil(t, p.NewChatModel)
		})
	}
}

func TestNewOllamaChatModel_DefaultsPlaceholderAPIKey(t *testing.T) {
	_, err := newOllamaChatModel(agent.ModelConfig{Model: "llama3.2"})
	require.NoError(t, err)
}
