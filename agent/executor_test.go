package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoTool() Tool {
	return NewTool("echo", "echoes its input", func(_ context.Context, args map[string]any) (any, error) {
		return args["value"], nil
	})
}

func failingTool() Tool {
	return NewTool("boom", "always fails", func(_ context.Context, args map[string]any) (any, error) {
		return nil, errors.New("kaboom")
	})
}

func panickingTool() Tool {
	return NewTool("panics", "always panics", func(_ context.Context, args map[string]any) (any, error) {
		panic("unexpected")
	})
}

func TestDefaultToolExecutor_ExecutesInOrder(t *testing.T) {
	tools := ToolSet{echoTool()}
	calls := []ToolCallPart{
		{ID: "1", Name: "echo", Arguments: map[string]any{"value": "a"}},
		{ID: "2", Name: "echo", Arguments: map[string]any{"value": "b"}},
	}

	results, err := (DefaultToolExecutor{}).ExecuteBatch(context.Background(), calls, tools)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Result)
	assert.Equal(t, "b", results[1].Result)
}

func TestDefaultToolExecutor_UnknownToolYieldsErrorResult(t *testing.T) {
	results, err := (DefaultToolExecutor{}).ExecuteBatch(context.Background(), []ToolCallPart{{ID: "1", Name: "missing"}}, ToolSet{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].IsError())
	assert.Contains(t, results[0].Error, "missing")
}

func TestDefaultToolExecutor_ToolErrorIsDataNotException(t *testing.T) {
	results, err := (DefaultToolExecutor{}).ExecuteBatch(context.Background(), []ToolCallPart{{ID: "1", Name: "boom"}}, ToolSet{failingTool()})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].IsError())
	assert.Equal(t, "kaboom", results[0].Error)
}

func TestDefaultToolExecutor_RecoversFromPanic(t *testing.T) {
	results, err := (DefaultToolExecutor{}).ExecuteBatch(context.Background(), []ToolCallPart{{ID: "1", Name: "panics"}}, ToolSet{panickingTool()})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].IsError())
}

func TestParallelToolExecutor_PreservesCallOrder(t *testing.T) {
	tools := ToolSet{echoTool()}
	calls := make([]ToolCallPart, 20)
	for i := range calls {
		calls[i] = ToolCallPart{ID: string(rune('a' + i)), Name: "echo", Arguments: map[string]any{"value": i}}
	}

	results, err := (ParallelToolExecutor{MaxConcurrency: 4}).ExecuteBatch(context.Background(), calls, tools)
	require.NoError(t, err)
	require.Len(t, results, 20)
	for i, r := range results {
		assert.Equal(t, i, r.Result)
	}
}

func TestParallelToolExecutor_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (ParallelToolExecutor{}).ExecuteBatch(ctx, []ToolCallPart{{ID: "1", Name: "echo"}}, ToolSet{echoTool()})
	require.Error(t, err)
}
