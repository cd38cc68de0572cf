package google

import (
	"encoding/json"
	"strings"

	"google.golang.org/genai"

	"github.com/taipm/agentic/agent"
	"github.com/taipm/agentic/agent/schema"
)

// toContents maps a canonical history into Gemini's content format. System
// messages are pulled out into the generation config's SystemInstruction
// rather than passed as a turn, matching Gemini's documented contract
// (mirrored from Anthropic's provider, which does the same for a different
// reason).
func toContents(history []agent.Message) (system string, contents []*genai.Content, err error) {
	for _, msg := range history {
		switch msg.Role {
		case agent.RoleSystem:
			system = msg.Text()
		case agent.RoleUser:
			userContents, encErr := userContent(msg)
			if encErr != nil {
				return "", nil, encErr
			}
			if userContents != nil {
				contents = append(contents, userContents)
			}
		case agent.RoleModel:
			contents = append(contents, modelContent(msg))
		}
	}
	return system, contents, nil
}

// userContent turns a user message into Gemini content. Tool results
// become function-response parts addressed by name, since Gemini pairs
// function calls and responses by name rather than by a provider-issued
// call ID.
func userContent(msg agent.Message) (*genai.Content, error) {
	var parts []*genai.Part
	if text := msg.Text(); text != "" {
		parts = append(parts, genai.NewPartFromText(text))
	}
	for _, result := range msg.ToolResults() {
		response, err := functionResponseData(result)
		if err != nil {
			return nil, err
		}
		parts = append(parts, &genai.Part{FunctionResponse: &genai.FunctionResponse{Name: result.Name, Response: response}})
	}
	if len(parts) == 0 {
		return nil, nil
	}
	return &genai.Content{Role: genai.RoleUser, Parts: parts}, nil
}

func functionResponseData(result agent.ToolResultPart) (map[string]any, error) {
	if result.IsError() {
		return map[string]any{"error": result.Error}, nil
	}
	if m, ok := result.Result.(map[string]any); ok {
		return m, nil
	}
	raw, err := json.Marshal(result.Result)
	if err != nil {
		return nil, agent.WrapProtocolError("google", "tool result for \""+result.Name+"\" did not marshal to JSON", err)
	}
	var wrapped map[string]any
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		wrapped = map[string]any{"result": result.Result}
	}
	return wrapped, nil
}

func modelContent(msg agent.Message) *genai.Content {
	var parts []*genai.Part
	if text := msg.Text(); text != "" {
		parts = append(parts, genai.NewPartFromText(text))
	}
	for _, call := range msg.ToolCalls() {
		parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{Name: call.Name, Args: call.Arguments}})
	}
	return &genai.Content{Role: genai.RoleModel, Parts: parts}
}

// toTools converts a ToolSet into Gemini's function-declaration format,
// one genai.Tool per declared function (Gemini supports bundling several
// declarations per Tool, but a 1:1 mapping keeps things simple and matches
// how the provider's own adapter builds them).
func toTools(tools agent.ToolSet) []*genai.Tool {
	out := make([]*genai.Tool, 0, len(tools))
	for _, t := range tools {
		decl := &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  toGenaiSchema(t.InputSchema, t.InputSchema),
		}
		out = append(out, &genai.Tool{FunctionDeclarations: []*genai.FunctionDeclaration{decl}})
	}
	return out
}

// toGenaiSchema converts the canonical JSON-Schema-shaped tool schema into
// Gemini's constrained schema subset, which only models a handful of JSON
// Schema keywords (type, properties, required, items, enum, description,
// nullable). "$ref" pointers are resolved through root's "$defs" first, and
// every required property is marked non-nullable.
func toGenaiSchema(root, s *schema.Schema) *genai.Schema {
	s = schema.ResolveRef(root, s)
	if s == nil {
		return &genai.Schema{Type: genai.TypeObject, Properties: map[string]*genai.Schema{}}
	}
	out := &genai.Schema{
		Type:        genaiType(s.Type),
		Description: s.Description,
	}
	if s.Nullable {
		nullable := true
		out.Nullable = &nullable
	}
	if len(s.Enum) > 0 {
		out.Enum = s.Enum
	}
	if s.Items != nil {
		out.Items = toGenaiSchema(root, s.Items)
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenaiSchema(root, prop)
		}
	}
	if len(s.Required) > 0 {
		out.Required = s.Required
		for _, name := range s.Required {
			if prop, ok := out.Properties[name]; ok {
				notNullable := false
				prop.Nullable = &notNullable
			}
		}
	}
	return out
}

func genaiType(t schema.Type) genai.Type {
	switch strings.ToLower(string(t)) {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

// partsToMessage converts one response's candidate parts into a canonical
// partial model message. Function calls carry no ID of Gemini's own — the
// orchestrator's tool-ID coordinator synthesizes one once the call lands in
// history, matching how the provider's own adapter stamped a synthetic
// "gemini_<name>_<uuid>" ID onto every extracted call.
func partsToMessage(parts []*genai.Part) agent.Message {
	var out []agent.Part
	for _, part := range parts {
		if part == nil {
			continue
		}
		if part.Text != "" {
			out = append(out, agent.TextPart{Text: part.Text})
		}
		if part.FunctionCall != nil {
			out = append(out, agent.ToolCallPart{Name: part.FunctionCall.Name, Arguments: part.FunctionCall.Args})
		}
	}
	return agent.Message{Role: agent.RoleModel, Parts: out}
}

// finishReasonFrom maps Gemini's documented finish-reason wire values.
// hasToolCalls takes priority since Gemini reports "STOP" even on a turn
// that only contains function calls.
func finishReasonFrom(reason genai.FinishReason, hasToolCalls bool) agent.FinishReason {
	if hasToolCalls {
		return agent.FinishReasonToolCalls
	}
	switch string(reason) {
	case "STOP":
		return agent.FinishReasonStop
	case "MAX_TOKENS":
		return agent.FinishReasonLength
	case "SAFETY", "RECITATION", "BLOCKLIST", "PROHIBITED_CONTENT":
		return agent.FinishReasonContentFilter
	case "":
		return agent.FinishReasonUnspecified
	default:
		return agent.FinishReasonUnspecified
	}
}
