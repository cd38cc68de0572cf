package agent

import (
	"context"

	"github.com/taipm/agentic/agent/toolid"
)

// DefaultMaxIterations bounds the default tool-calling loop. The source
// this spec is drawn from applied the cap inconsistently (10 in one path,
// unbounded in another); this implementation fixes it at 10 and always
// enforces it, configurable via Agent.WithMaxIterations.
const DefaultMaxIterations = 10

// EventKind discriminates the events an Orchestrator emits on its output
// channel.
type EventKind int

const (
	// EventTextChunk carries a fragment of streamed model text.
	EventTextChunk EventKind = iota
	// EventMessageBoundary marks the end of one consolidated model
	// message (and, when tools were called, the tool-result message
	// that followed it).
	EventMessageBoundary
	// EventDone marks the end of the whole conversation turn.
	EventDone
)

// IterationEvent is one unit of orchestrator progress. Text carries the
// raw text for EventTextChunk; Messages carries the newly appended
// history messages for EventMessageBoundary and EventDone.
type IterationEvent struct {
	Kind         EventKind
	Text         string
	Messages     []Message
	FinishReason FinishReason
	Usage        Usage
	Metadata     map[string]any
	Err          error
}

// Orchestrator drives a StreamingState to completion against a ChatModel,
// emitting IterationEvents as it goes.
type Orchestrator interface {
	Run(ctx context.Context, model ChatModel, state *StreamingState, deps OrchestratorDeps) <-chan IterationEvent
}

// OrchestratorDeps bundles the collaborators an Orchestrator needs beyond
// the model and state it's handed per call.
type OrchestratorDeps struct {
	Executor      ToolExecutor
	Logger        Logger
	MaxIterations int
}

func (d OrchestratorDeps) withDefaults() OrchestratorDeps {
	if d.Executor == nil {
		d.Executor = DefaultToolExecutor{}
	}
	if d.Logger == nil {
		d.Logger = NoopLogger{}
	}
	if d.MaxIterations <= 0 {
		d.MaxIterations = DefaultMaxIterations
	}
	return d
}

// DefaultStreamingOrchestrator implements the stream → accumulate →
// detect-tools → execute → splice loop. It is used whenever the caller has
// not supplied an output schema.
type DefaultStreamingOrchestrator struct{}

// Run implements Orchestrator.
func (DefaultStreamingOrchestrator) Run(ctx context.Context, model ChatModel, state *StreamingState, deps OrchestratorDeps) <-chan IterationEvent {
	deps = deps.withDefaults()
	out := make(chan IterationEvent)
	go runDefaultLoop(ctx, model, state, deps, out)
	return out
}

func runDefaultLoop(ctx context.Context, model ChatModel, state *StreamingState, deps OrchestratorDeps, out chan<- IterationEvent) {
	defer close(out)

	for iteration := 0; ; iteration++ {
		if iteration >= deps.MaxIterations {
			deps.Logger.Warn(ctx, "agent: iteration cap exceeded", F("cap", deps.MaxIterations))
			emit(ctx, out, IterationEvent{
				Kind:         EventDone,
				FinishReason: FinishReasonError,
				Err:          &IterationCapExceeded{Cap: deps.MaxIterations},
			})
			return
		}

		state.ResetPerMessage()

		frames, err := model.SendStream(ctx, state.History, ModelOptions{Tools: state.Tools})
		if err != nil {
			emit(ctx, out, IterationEvent{Kind: EventDone, FinishReason: FinishReasonError, Err: err})
			return
		}

		var lastFrame ChatStreamResult
		for chunk := range frames {
			if chunk.Err != nil {
				if _, ok := chunk.Err.(*CancellationError); ok {
					emit(ctx, out, IterationEvent{Kind: EventDone, FinishReason: FinishReasonError, Err: chunk.Err})
					return
				}
				emit(ctx, out, IterationEvent{Kind: EventDone, FinishReason: FinishReasonError, Err: chunk.Err})
				return
			}

			frame := chunk.Result
			text := frame.Output.Text()
			if text != "" {
				if state.shouldPrefixNextMessage && state.isFirstChunkOfMessage {
					text = "\n" + text
				}
				state.isFirstChunkOfMessage = false
				if !emit(ctx, out, IterationEvent{Kind: EventTextChunk, Text: text}) {
					return
				}
			}

			state.accumulatedMessage = Accumulate(state.accumulatedMessage, frame.Output)
			lastFrame = frame
			state.SetLastResult(frame)
		}

		final := Consolidate(state.accumulatedMessage)
		assignSynthesizedIDs(final, state.toolIDCoordinator)
		state.History = append(state.History, final)

		calls := final.ToolCalls()
		if len(calls) == 0 {
			finishReason := lastFrame.FinishReason
			if finishReason == "" {
				finishReason = FinishReasonStop
			}
			emit(ctx, out, IterationEvent{Kind: EventMessageBoundary, Messages: []Message{final}})
			emit(ctx, out, IterationEvent{
				Kind:         EventDone,
				Messages:     []Message{final},
				FinishReason: finishReason,
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

		if !emit(ctx, out, IterationEvent{
			Kind:         EventMessageBoundary,
			Messages:     []Message{final, resultMessage},
			FinishReason: FinishReasonToolCalls,
		}) {
			return
		}
	}
}

// assignSynthesizedIDs fills in an ID for every tool call a provider left
// ID-less (Gemini's function calls carry no ID of their own), so the
// ToolResultPart the executor builds from each call carries the same
// non-empty ID.
func assignSynthesizedIDs(msg Message, coord *toolid.Coordinator) {
	for i, p := range msg.Parts {
		call, ok := p.(ToolCallPart)
		if !ok || call.ID != "" {
			continue
		}
		registered := coord.RegisterCall("", call.Name)
		call.ID = registered.ID
		msg.Parts[i] = call
	}
}

// emit sends an event, returning false if the context was cancelled first
// so callers can unwind instead of blocking forever on an abandoned
// consumer.
func emit(ctx context.Context, out chan<- IterationEvent, ev IterationEvent) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
