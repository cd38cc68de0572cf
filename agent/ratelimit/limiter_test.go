package ratelimit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucket_AllowsWithinBurst(t *testing.T) {
	tb := NewTokenBucket(Config{RequestsPerSecond: 1, Burst: 3})
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())

	stats := tb.Statistics()
	assert.Equal(t, int64(3), stats.Allowed)
	assert.Equal(t, int64(1), stats.Denied)
}

func TestNoLimit_AlwaysAllows(t *testing.T) {
	l := NoLimit()
	assert.True(t, l.Allow())
	assert.NoError(t, l.Wait(context.Background()))
}
