package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProvider(name string, aliases []string, caps ...Capability) Provider {
	return Provider{Name: name, DisplayName: name, Aliases: aliases, Capabilities: caps}
}

func TestRegistry_GetResolvesAlias(t *testing.T) {
	r := NewRegistry()
	r.Register(testProvider("anthropic", []string{"claude"}, CapabilityChat))

	p, err := r.Get("claude")
	require.NoError(t, err)
	assert.Equal(t, "anthropic", p.Name)
}

func TestRegistry_GetUnknownProvider(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get("nonexistent")
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
}

func TestRegistry_RegisterTwicePanics(t *testing.T) {
	r := NewRegistry()
	r.Register(testProvider("openai", nil, CapabilityChat))
	assert.Panics(t, func() {
		r.Register(testProvider("openai", nil, CapabilityChat))
	})
}

func TestRegistry_AllWithFiltersByCapability(t *testing.T) {
	r := NewRegistry()
	r.Register(testProvider("openai", nil, CapabilityChat, CapabilityTypedOutputWithTools))
	r.Register(testProvider("cohere", nil, CapabilityChat))

	matches := r.AllWith(CapabilityTypedOutputWithTools)
	require.Len(t, matches, 1)
	assert.Equal(t, "openai", matches[0].Name)

	all := r.AllWith(CapabilityChat)
	assert.Len(t, all, 2)
}
