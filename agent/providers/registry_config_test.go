package providers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taipm/agentic/agent"
)

const sampleTable = `
providers:
  - name: vllm-internal
    displayName: Internal vLLM gateway
    baseUrl: http://vllm.internal:8000/v1
    apiKeyName: VLLM_API_KEY
    defaultChat: Qwen2.5-72B-Instruct
    capabilities: [chat, multiToolCalls]
    aliases: [vllm]
`

func TestLoadProviderTable_RegistersEachEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "providers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleTable), 0o644))

	reg := agent.NewRegistry()
	require.NoError(t, LoadProviderTable(path, reg))

	p, err := reg.Get("vllm")
	require.NoError(t, err)
	assert.Equal(t, "vllm-internal", p.Name)
	assert.True(t, p.HasCapability(agent.CapabilityChat))
	assert.Nil(t, p.NewEmbeddingsModel)
}

func TestLoadProviderTable_RejectsMissingBaseURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "providers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("providers:\n  - name: bad\n"), 0o644))

	reg := agent.NewRegistry()
	err := LoadProviderTable(path, reg)
	assert.Error(t, err)
}
