// Package toolid resolves the asymmetry between providers that attach a
// stable ID to every tool call (OpenAI, Anthropic) and providers that don't
// (Gemini's function calls carry no ID at all). It gives every tool call a
// stable ID for the duration of one request, and pairs incoming tool
// results back to the call they answer.
package toolid

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Call is a pending tool invocation the Coordinator is tracking.
type Call struct {
	ID   string
	Name string
}

// Coordinator tracks outstanding tool calls for a single request and pairs
// tool results to them. It is not safe for concurrent use — one
// Coordinator per in-flight request, matching StreamingState's lifetime.
type Coordinator struct {
	pending []Call
}

// New returns an empty Coordinator.
func New() *Coordinator {
	return &Coordinator{}
}

// SynthesizeID returns a stable call ID for a provider that omits one
// itself (Gemini). The synthesized ID embeds the tool name so log lines
// stay readable, plus a short UUID suffix so repeated calls to the same
// tool in one turn don't collide.
func SynthesizeID(toolName string) string {
	return fmt.Sprintf("call_%s_%s", toolName, uuid.New().String()[:8])
}

// RegisterCall records a tool call the model just emitted, assigning it an
// ID if the provider mapper didn't already supply one.
func (c *Coordinator) RegisterCall(id, name string) Call {
	if id == "" {
		id = SynthesizeID(name)
	}
	call := Call{ID: id, Name: name}
	c.pending = append(c.pending, call)
	return call
}

// MatchResult pairs an incoming tool result to the call it answers. When
// the provider supplies an ID, it is matched by ID. When the provider omits
// one (id == ""), the result is matched FIFO against the oldest pending
// call with the same name — Gemini's function responses carry a name but
// no ID, so call order within a name is the only signal available.
// Matched calls are removed from the pending set.
func (c *Coordinator) MatchResult(id, name string) (Call, error) {
	if id != "" {
		for i, call := range c.pending {
			if call.ID == id {
				c.pending = append(c.pending[:i], c.pending[i+1:]...)
				return call, nil
			}
		}
		return Call{}, fmt.Errorf("toolid: no pending call with id %q: %w", id, errNoMatch)
	}
	for i, call := range c.pending {
		if call.Name == name {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return call, nil
		}
	}
	return Call{}, fmt.Errorf("toolid: no pending call named %q: %w", name, errNoMatch)
}

// Pending returns the calls still awaiting a result, in call order.
func (c *Coordinator) Pending() []Call {
	out := make([]Call, len(c.pending))
	copy(out, c.pending)
	return out
}

// Clear discards all pending calls, readying the Coordinator for reuse
// across a new request.
func (c *Coordinator) Clear() {
	c.pending = nil
}

var errNoMatch = errors.New("no matching tool call")

// IsNoMatch reports whether err originated from an unmatched MatchResult call.
func IsNoMatch(err error) bool {
	return errors.Is(err, errNoMatch)
}
