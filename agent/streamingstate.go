package agent

import "github.com/taipm/agentic/agent/toolid"

// StreamingState is the per-request mutable state an orchestrator drives to
// completion. Exactly one orchestrator invocation owns a StreamingState: it
// is created by the Agent at the start of a Send*/SendStream call, mutated
// only by that call's orchestrator, and discarded when the call returns.
type StreamingState struct {
	History []Message
	Tools   ToolSet

	accumulatedMessage Message
	lastResult         ChatStreamResult
	done               bool

	shouldPrefixNextMessage bool
	isFirstChunkOfMessage   bool

	toolIDCoordinator *toolid.Coordinator

	// Typed-output bookkeeping: when the return_result tool strategy is in
	// play, the synthetic call and any text emitted alongside it are
	// tracked here instead of being emitted as text chunks. The call's
	// name and ID are also reported as the final event's Metadata; the
	// text is not reported anywhere else.
	suppressedToolCallMetadata map[string]any
	suppressedTextParts        []TextPart
}

// NewStreamingState builds a fresh StreamingState for one Send*/SendStream
// call, seeded with the caller's history and tool set.
func NewStreamingState(history []Message, tools ToolSet) *StreamingState {
	return &StreamingState{
		History:               append([]Message(nil), history...),
		Tools:                 tools,
		isFirstChunkOfMessage: true,
		toolIDCoordinator:     toolid.New(),
	}
}

// ResetPerMessage clears the fields that are scoped to a single streamed
// model message, at the start of each orchestrator iteration.
func (s *StreamingState) ResetPerMessage() {
	s.accumulatedMessage = Message{Role: RoleModel}
	s.isFirstChunkOfMessage = true
}

// Done reports whether the orchestrator has finished driving this state.
func (s *StreamingState) Done() bool { return s.done }

// MarkDone terminates the loop.
func (s *StreamingState) MarkDone() { s.done = true }

// LastResult returns the most recently recorded stream frame's metadata.
func (s *StreamingState) LastResult() ChatStreamResult { return s.lastResult }

// SetLastResult records the most recent stream frame.
func (s *StreamingState) SetLastResult(r ChatStreamResult) { s.lastResult = r }
