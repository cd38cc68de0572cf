package agent

import (
	"context"
	"fmt"
	"sync"
)

// ToolExecutor turns a batch of tool calls into a batch of tool results.
// Tool failures are data, not exceptions: ExecuteBatch never returns an
// error for a failed tool invocation, it folds the failure into the
// corresponding ToolResultPart so the model can see it and decide whether
// to retry, adjust, or give up. The only errors ExecuteBatch itself returns
// are orchestrator-level ones (e.g. a cancelled context).
type ToolExecutor interface {
	ExecuteBatch(ctx context.Context, calls []ToolCallPart, tools ToolSet) ([]ToolResultPart, error)
}

// DefaultToolExecutor runs tool calls one at a time, in call order. It is
// the default because most tools are not safe to assume independent, and
// sequential execution is the simplest contract to reason about.
type DefaultToolExecutor struct{}

// ExecuteBatch implements ToolExecutor.
func (DefaultToolExecutor) ExecuteBatch(ctx context.Context, calls []ToolCallPart, tools ToolSet) ([]ToolResultPart, error) {
	results := make([]ToolResultPart, len(calls))
	for i, call := range calls {
		if err := ctx.Err(); err != nil {
			return nil, &CancellationError{Err: err}
		}
		results[i] = executeSingle(ctx, call, tools)
	}
	return results, nil
}

// ParallelToolExecutor runs up to MaxConcurrency tool calls at a time,
// reordering results back into call order before returning so callers never
// have to account for completion order — only the wall-clock benefit of
// concurrency is observable, never a reordering.
type ParallelToolExecutor struct {
	MaxConcurrency int
}

// ExecuteBatch implements ToolExecutor.
func (p ParallelToolExecutor) ExecuteBatch(ctx context.Context, calls []ToolCallPart, tools ToolSet) ([]ToolResultPart, error) {
	if len(calls) == 0 {
		return nil, nil
	}
	limit := p.MaxConcurrency
	if limit <= 0 {
		limit = len(calls)
	}

	results := make([]ToolResultPart, len(calls))
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup

	for i, call := range calls {
		if err := ctx.Err(); err != nil {
			return nil, &CancellationError{Err: err}
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, call ToolCallPart) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = executeSingle(ctx, call, tools)
		}(i, call)
	}
	wg.Wait()

	return results, nil
}

func executeSingle(ctx context.Context, call ToolCallPart, tools ToolSet) (result ToolResultPart) {
	result = ToolResultPart{ID: call.ID, Name: call.Name}
	tool, ok := tools.Lookup(call.Name)
	if !ok {
		result.Error = fmt.Sprintf("tool %q not found", call.Name)
		return result
	}

	args := call.Arguments
	if args == nil {
		args = map[string]any{}
	}
	if err := tool.ValidateArguments(args); err != nil {
		result.Error = err.Error()
		return result
	}

	defer func() {
		if r := recover(); r != nil {
			result.Result = nil
			result.Error = fmt.Sprintf("tool %q panicked: %v", call.Name, r)
		}
	}()

	value, err := tool.Invoke(ctx, args)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Result = value
	return result
}
