// Package agent provides a provider-neutral runtime for multi-turn,
// tool-calling LLM conversations. The same Agent API drives OpenAI-style
// chat completions, Anthropic Messages, Google Gemini, and OpenAI-compatible
// proxies (OpenRouter, Together, Mistral, Cohere, Ollama) without the caller
// having to branch on which backend is in play.
package agent

import "fmt"

// Role identifies who produced a Message.
type Role string

const (
	// RoleSystem carries the system prompt. At most one System message may
	// appear in a history, and only as the first message.
	RoleSystem Role = "system"
	// RoleUser carries end-user turns and tool-result turns (a tool result
	// is input to the *next* model turn, so it is attributed to the user).
	RoleUser Role = "user"
	// RoleModel carries the model's own turns, including tool calls.
	RoleModel Role = "model"
)

// Message is an ordered tuple of role and parts. Histories alternate
// user/model after any leading system message.
type Message struct {
	Role     Role
	Parts    []Part
	Metadata map[string]any
}

// Text returns the concatenation of every TextPart in the message, in
// order. Non-text parts are ignored.
func (m Message) Text() string {
	var out string
	for _, p := range m.Parts {
		if t, ok := p.(TextPart); ok {
			out += t.Text
		}
	}
	return out
}

// ToolCalls returns every ToolCallPart in the message, in order.
func (m Message) ToolCalls() []ToolCallPart {
	var calls []ToolCallPart
	for _, p := range m.Parts {
		if c, ok := p.(ToolCallPart); ok {
			calls = append(calls, c)
		}
	}
	return calls
}

// ToolResults returns every ToolResultPart in the message, in order.
func (m Message) ToolResults() []ToolResultPart {
	var results []ToolResultPart
	for _, p := range m.Parts {
		if r, ok := p.(ToolResultPart); ok {
			results = append(results, r)
		}
	}
	return results
}

// System builds a system message from plain text.
func System(text string) Message {
	return Message{Role: RoleSystem, Parts: []Part{TextPart{Text: text}}}
}

// User builds a user message from plain text.
func User(text string) Message {
	return Message{Role: RoleUser, Parts: []Part{TextPart{Text: text}}}
}

// Model builds a model message from plain text. Useful for seeding
// few-shot history.
func Model(text string) Message {
	return Message{Role: RoleModel, Parts: []Part{TextPart{Text: text}}}
}

// ValidateAlternation checks property 1 of the core spec: after any leading
// system message, roles strictly alternate user/model.
func ValidateAlternation(history []Message) error {
	start := 0
	if len(history) > 0 && history[0].Role == RoleSystem {
		start = 1
	}
	for i := start; i < len(history); i++ {
		if history[i].Role == RoleSystem {
			return fmt.Errorf("agent: system message at index %d, system may only appear first", i)
		}
		if i > start {
			prev, cur := history[i-1].Role, history[i].Role
			if prev == cur {
				return fmt.Errorf("agent: role alternation broken at index %d: %s followed by %s", i, prev, cur)
			}
		}
	}
	return nil
}
