package agent

import (
	"context"
	"encoding/json"

	"github.com/taipm/agentic/agent/schema"
)

// ReturnResultToolName is the synthetic tool name the tool-based typed
// output strategy injects when a provider lacks typedOutputWithTools.
const ReturnResultToolName = "return_result"

// TypedOutputStrategy selects how a TypedOutputStreamingOrchestrator
// obtains a schema-conforming response from the model.
type TypedOutputStrategy int

const (
	// TypedOutputNative configures the model with a JSON-schema
	// response-format directive; used when the provider declares
	// typedOutput (and either no tools are present, or it also declares
	// typedOutputWithTools).
	TypedOutputNative TypedOutputStrategy = iota
	// TypedOutputViaTool injects a synthetic return_result tool whose
	// input schema is the caller's output schema; used when the
	// provider supports tools but not typedOutputWithTools.
	TypedOutputViaTool
)

// ChooseTypedOutputStrategy implements the per-provider strategy selection
// rule: native typed output when the provider supports it and either no
// tools are requested or it also supports typed output alongside tools;
// the return_result tool strategy otherwise.
func ChooseTypedOutputStrategy(p Provider, toolsRequested bool) TypedOutputStrategy {
	if p.HasCapability(CapabilityTypedOutput) && (!toolsRequested || p.HasCapability(CapabilityTypedOutputWithTools)) {
		return TypedOutputNative
	}
	return TypedOutputViaTool
}

// TypedOutputStreamingOrchestrator wraps the default stream-accumulate-
// tools loop with structured-output handling: the final emitted payload is
// always a string that parses as JSON conforming to OutputSchema.
type TypedOutputStreamingOrchestrator struct {
	OutputSchema *schema.Schema
	Strategy     TypedOutputStrategy
}

// Run implements Orchestrator.
func (o TypedOutputStreamingOrchestrator) Run(ctx context.Context, model ChatModel, state *StreamingState, deps OrchestratorDeps) <-chan IterationEvent {
	deps = deps.withDefaults()
	out := make(chan IterationEvent)

	switch o.Strategy {
	case TypedOutputNative:
		go o.runNative(ctx, model, state, deps, out)
	default:
		go o.runViaTool(ctx, model, state, deps, out)
	}
	return out
}

func (o TypedOutputStreamingOrchestrator) runNative(ctx context.Context, model ChatModel, state *StreamingState, deps OrchestratorDeps, out chan<- IterationEvent) {
	defer close(out)

	for iteration := 0; ; iteration++ {
		if iteration >= deps.MaxIterations {
			emit(ctx, out, IterationEvent{Kind: EventDone, FinishReason: FinishReasonError, Err: &IterationCapExceeded{Cap: deps.MaxIterations}})
			return
		}

		state.ResetPerMessage()
		frames, err := model.SendStream(ctx, state.History, ModelOptions{Tools: state.Tools, OutputSchema: o.OutputSchema})
		if err != nil {
			emit(ctx, out, IterationEvent{Kind: EventDone, FinishReason: FinishReasonError, Err: err})
			return
		}

		var lastFrame ChatStreamResult
		for chunk := range frames {
			if chunk.Err != nil {
				emit(ctx, out, IterationEvent{Kind: EventDone, FinishReason: FinishReasonError, Err: chunk.Err})
				return
			}
			state.accumulatedMessage = Accumulate(state.accumulatedMessage, chunk.Result.Output)
			lastFrame = chunk.Result
			state.SetLastResult(chunk.Result)
		}

		final := Consolidate(state.accumulatedMessage)
		assignSynthesizedIDs(final, state.toolIDCoordinator)
		state.History = append(state.History, final)

		calls := final.ToolCalls()
		if len(calls) == 0 {
			if o.OutputSchema != nil {
				var decoded any
				err := json.Unmarshal([]byte(final.Text()), &decoded)
				if err == nil {
					err = schema.Validate(o.OutputSchema, decoded)
				}
				if err != nil {
					emit(ctx, out, IterationEvent{Kind: EventDone, FinishReason: FinishReasonError, Err: WrapProtocolError("", "typed output does not conform to the output schema", err)})
					return
				}
			}
			emit(ctx, out, IterationEvent{
				Kind:         EventDone,
				Text:         final.Text(),
				Messages:     []Message{final},
				FinishReason: firstNonEmpty(lastFrame.FinishReason, FinishReasonStop),
				Usage:        lastFrame.Usage,
				Metadata:     lastFrame.Metadata,
			})
			return
		}

		results, err := deps.Executor.ExecuteBatch(ctx, calls, state.Tools)
		if err != nil {
			emit(ctx, out, IterationEvent{Kind: EventDone, FinishReason: FinishReasonError, Err: err})
			return
		}
		resultParts := make([]Part, len(results))
		for i, r := range results {
			resultParts[i] = r
		}
		resultMessage := Message{Role: RoleUser, Parts: resultParts}
		state.History = append(state.History, resultMessage)
		state.shouldPrefixNextMessage = true

		if !emit(ctx, out, IterationEvent{Kind: EventMessageBoundary, Messages: []Message{final, resultMessage}, FinishReason: FinishReasonToolCalls}) {
			return
		}
	}
}

func (o TypedOutputStreamingOrchestrator) runViaTool(ctx context.Context, model ChatModel, state *StreamingState, deps OrchestratorDeps, out chan<- IterationEvent) {
	defer close(out)

	returnResultTool := Tool{Name: ReturnResultToolName, Description: "Return the final structured result.", InputSchema: o.OutputSchema}
	tools := append(ToolSet{}, state.Tools...)
	tools = append(tools, returnResultTool)

	for iteration := 0; ; iteration++ {
		if iteration >= deps.MaxIterations {
			emit(ctx, out, IterationEvent{Kind: EventDone, FinishReason: FinishReasonError, Err: &IterationCapExceeded{Cap: deps.MaxIterations}})
			return
		}

		state.ResetPerMessage()
		frames, err := model.SendStream(ctx, state.History, ModelOptions{Tools: tools})
		if err != nil {
			emit(ctx, out, IterationEvent{Kind: EventDone, FinishReason: FinishReasonError, Err: err})
			return
		}

		var lastFrame ChatStreamResult
		for chunk := range frames {
			if chunk.Err != nil {
				emit(ctx, out, IterationEvent{Kind: EventDone, FinishReason: FinishReasonError, Err: chunk.Err})
				return
			}
			state.accumulatedMessage = Accumulate(state.accumulatedMessage, chunk.Result.Output)
			lastFrame = chunk.Result
			state.SetLastResult(chunk.Result)
		}

		final := Consolidate(state.accumulatedMessage)
		assignSynthesizedIDs(final, state.toolIDCoordinator)

		returnCall, calls, hasReturn := splitReturnResultCall(final.ToolCalls())
		if hasReturn {
			if o.OutputSchema != nil {
				if err := schema.Validate(o.OutputSchema, returnCall.Arguments); err != nil {
					emit(ctx, out, IterationEvent{Kind: EventDone, FinishReason: FinishReasonError, Err: WrapProtocolError("", "return_result arguments do not conform to the output schema", err)})
					return
				}
			}
			payload, err := json.Marshal(returnCall.Arguments)
			if err != nil {
				emit(ctx, out, IterationEvent{Kind: EventDone, FinishReason: FinishReasonError, Err: WrapProtocolError("", "return_result arguments did not marshal to JSON", err)})
				return
			}
			// No text chunk is emitted for the synthetic call or any
			// ancillary text: the call's name and ID become the final
			// event's Metadata, and the text is kept only in
			// state.suppressedTextParts.
			state.suppressedToolCallMetadata = map[string]any{"name": returnCall.Name, "id": returnCall.ID}
			if final.Text() != "" {
				state.suppressedTextParts = append(state.suppressedTextParts, TextPart{Text: final.Text()})
			}
			state.History = append(state.History, final)
			emit(ctx, out, IterationEvent{
				Kind:         EventDone,
				Text:         string(payload),
				Messages:     []Message{final},
				FinishReason: FinishReasonStop,
				Usage:        lastFrame.Usage,
				Metadata:     state.suppressedToolCallMetadata,
			})
			return
		}

		state.History = append(state.History, final)

		if len(calls) == 0 {
			// Model produced neither tool calls nor the required
			// return_result call: treat as a protocol error rather than
			// looping forever.
			emit(ctx, out, IterationEvent{Kind: EventDone, FinishReason: FinishReasonError, Err: WrapProtocolError("", "model finished without calling return_result", nil)})
			return
		}

		results, err := deps.Executor.ExecuteBatch(ctx, calls, tools)
		if err != nil {
			emit(ctx, out, IterationEvent{Kind: EventDone, FinishReason: FinishReasonError, Err: err})
			return
		}
		resultParts := make([]Part, len(results))
		for i, r := range results {
			resultParts[i] = r
		}
		resultMessage := Message{Role: RoleUser, Parts: resultParts}
		state.History = append(state.History, resultMessage)
		state.shouldPrefixNextMessage = true

		if !emit(ctx, out, IterationEvent{Kind: EventMessageBoundary, Messages: []Message{final, resultMessage}, FinishReason: FinishReasonToolCalls}) {
			return
		}
	}
}

// splitReturnResultCall separates a return_result call (if any) from the
// rest of the batch. The orchestrator requires at most one: a
// well-behaved model calls it alone.
func splitReturnResultCall(calls []ToolCallPart) (ToolCallPart, []ToolCallPart, bool) {
	var rest []ToolCallPart
	var found ToolCallPart
	hasFound := false
	for _, c := range calls {
		if c.Name == ReturnResultToolName && !hasFound {
			found = c
			hasFound = true
			continue
		}
		rest = append(rest, c)
	}
	return found, rest, hasFound
}

func firstNonEmpty(r FinishReason, fallback FinishReason) FinishReason {
	if r == "" {
		return fallback
	}
	return r
}
