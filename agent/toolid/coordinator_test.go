package toolid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCall_SynthesizesIDWhenMissing(t *testing.T) {
	c := New()
	call := c.RegisterCall("", "search")
	assert.NotEmpty(t, call.ID)
	assert.Equal(t, "search", call.Name)
}

func TestRegisterCall_KeepsProviderSuppliedID(t *testing.T) {
	c := New()
	call := c.RegisterCall("call_abc123", "search")
	assert.Equal(t, "call_abc123", call.ID)
}

func TestMatchResult_ByID(t *testing.T) {
	c := New()
	c.RegisterCall("id-1", "search")
	c.RegisterCall("id-2", "weather")

	matched, err := c.MatchResult("id-2", "weather")
	require.NoError(t, err)
	assert.Equal(t, "id-2", matched.ID)
	assert.Len(t, c.Pending(), 1)
	assert.Equal(t, "id-1", c.Pending()[0].ID)
}

func TestMatchResult_FIFOByNameWhenIDOmitted(t *testing.T) {
	c := New()
	first := c.RegisterCall("", "search")
	second := c.RegisterCall("", "search")

	matched, err := c.MatchResult("", "search")
	require.NoError(t, err)
	assert.Equal(t, first.ID, matched.ID)

	matched2, err := c.MatchResult("", "search")
	require.NoError(t, err)
	assert.Equal(t, second.ID, matched2.ID)
}

func TestMatchResult_NoMatch(t *testing.T) {
	c := New()
	_, err := c.MatchResult("missing", "search")
	require.Error(t, err)
	assert.True(t, IsNoMatch(err))
}

func TestClear_EmptiesPending(t *testing.T) {
	c := New()
	c.RegisterCall("id-1", "search")
	c.Clear()
	assert.Empty(t, c.Pending())
}
