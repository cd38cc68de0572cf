package agent

import (
	"context"
	"fmt"

	"github.com/taipm/agentic/agent/schema"
)

// Tool is a function the model may invoke mid-conversation. Name must be
// unique within a single request's tool set; InputSchema, when non-nil, is
// validated against the arguments the model produced before Invoke runs.
type Tool struct {
	Name        string
	Description string
	InputSchema *schema.Schema
	Invoke       func(ctx context.Context, args map[string]any) (any, error)
}

// NewTool builds a Tool with the given name, description, and handler. Use
// WithSchema to attach an input schema.
func NewTool(name, description string, invoke func(ctx context.Context, args map[string]any) (any, error)) Tool {
	return Tool{Name: name, Description: description, Invoke: invoke}
}

// WithSchema returns a copy of t with InputSchema set.
func (t Tool) WithSchema(s *schema.Schema) Tool {
	t.InputSchema = s
	return t
}

// Validate reports a ConfigurationError if the tool is missing a name or
// handler, or if its schema itself fails to compile.
func (t Tool) Validate() error {
	if t.Name == "" {
		return &ConfigurationError{Message: "tool has no name", Fix: "set Tool.Name to a unique, non-empty identifier"}
	}
	if t.Invoke == nil {
		return &ConfigurationError{Message: fmt.Sprintf("tool %q has no handler", t.Name), Fix: "set Tool.Invoke to a non-nil function"}
	}
	if t.InputSchema != nil {
		if _, err := schema.Compile(t.InputSchema); err != nil {
			return &ConfigurationError{Message: fmt.Sprintf("tool %q has an invalid input schema: %v", t.Name, err), Fix: "fix the schema passed to Tool.WithSchema"}
		}
	}
	return nil
}

// ValidateArguments checks args against the tool's InputSchema, if any. A
// tool with no schema accepts any arguments.
func (t Tool) ValidateArguments(args map[string]any) error {
	if t.InputSchema == nil {
		return nil
	}
	return schema.Validate(t.InputSchema, args)
}

// ToolSet is an ordered, name-indexed collection of Tools for a single
// request.
type ToolSet []Tool

// Lookup returns the tool with the given name, and whether it was found.
func (ts ToolSet) Lookup(name string) (Tool, bool) {
	for _, t := range ts {
		if t.Name == name {
			return t, true
		}
	}
	return Tool{}, false
}

// Names returns the tool names in declaration order.
func (ts ToolSet) Names() []string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.Name
	}
	return names
}

// Validate checks every tool in the set and rejects duplicate names.
func (ts ToolSet) Validate() error {
	seen := make(map[string]bool, len(ts))
	for _, t := range ts {
		if err := t.Validate(); err != nil {
			return err
		}
		if seen[t.Name] {
			return &ConfigurationError{Message: fmt.Sprintf("duplicate tool name %q", t.Name), Fix: "give each tool in the set a unique Name"}
		}
		seen[t.Name] = true
	}
	return nil
}
