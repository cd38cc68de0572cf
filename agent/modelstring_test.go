package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModelString_BareProvider(t *testing.T) {
	ms, err := ParseModelString("openai")
	require.NoError(t, err)
	assert.Equal(t, "openai", ms.Provider)
	assert.Empty(t, ms.ChatModel)
}

func TestParseModelString_ColonName(t *testing.T) {
	ms, err := ParseModelString("openai:gpt-4o")
	require.NoError(t, err)
	assert.Equal(t, "openai", ms.Provider)
	assert.Equal(t, "gpt-4o", ms.ChatModel)
}

func TestParseModelString_SlashPath(t *testing.T) {
	ms, err := ParseModelString("openai/gpt-4o")
	require.NoError(t, err)
	assert.Equal(t, "openai", ms.Provider)
	assert.Equal(t, "gpt-4o", ms.ChatModel)
}

func TestParseModelString_Query(t *testing.T) {
	ms, err := ParseModelString("openai?chat=gpt-4o&embeddings=text-embedding-3-large")
	require.NoError(t, err)
	assert.Equal(t, "openai", ms.Provider)
	assert.Equal(t, "gpt-4o", ms.ChatModel)
	assert.Equal(t, "text-embedding-3-large", ms.EmbedModel)
}

func TestParseModelString_LowercasesProvider(t *testing.T) {
	ms, err := ParseModelString("OpenAI:gpt-4o")
	require.NoError(t, err)
	assert.Equal(t, "openai", ms.Provider)
}

func TestParseModelString_RejectsEmpty(t *testing.T) {
	_, err := ParseModelString("")
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
}

func TestParseModelString_RejectsUnknownQueryKey(t *testing.T) {
	_, err := ParseModelString("openai?bogus=x")
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
}
