package anthropic

import (
	"encoding/json"
	"fmt"

	sdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/taipm/agentic/agent"
	"github.com/taipm/agentic/agent/schema"
)

// encodeHistory maps a canonical history into Anthropic's wire format.
// System messages are not a turn on the Messages API — they are pulled out
// into a separate system-prompt parameter, per the provider's documented
// contract.
func encodeHistory(history []agent.Message) (system []sdk.TextBlockParam, messages []sdk.MessageParam, err error) {
	for _, msg := range history {
		switch msg.Role {
		case agent.RoleSystem:
			if text := msg.Text(); text != "" {
				system = append(system, sdk.TextBlockParam{Text: text})
			}
		case agent.RoleUser:
			blocks, encErr := encodeUserBlocks(msg)
			if encErr != nil {
				return nil, nil, encErr
			}
			messages = append(messages, sdk.NewUserMessage(blocks...))
		case agent.RoleModel:
			blocks, encErr := encodeModelBlocks(msg)
			if encErr != nil {
				return nil, nil, encErr
			}
			messages = append(messages, sdk.NewAssistantMessage(blocks...))
		}
	}
	return system, messages, nil
}

func encodeUserBlocks(msg agent.Message) ([]sdk.ContentBlockParamUnion, error) {
	var blocks []sdk.ContentBlockParamUnion
	if text := msg.Text(); text != "" {
		blocks = append(blocks, sdk.NewTextBlock(text))
	}
	for _, result := range msg.ToolResults() {
		content, err := toolResultContent(result)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, sdk.NewToolResultBlock(result.ID, content, result.IsError()))
	}
	return blocks, nil
}

func encodeModelBlocks(msg agent.Message) ([]sdk.ContentBlockParamUnion, error) {
	var blocks []sdk.ContentBlockParamUnion
	if text := msg.Text(); text != "" {
		blocks = append(blocks, sdk.NewTextBlock(text))
	}
	for _, call := range msg.ToolCalls() {
		blocks = append(blocks, sdk.NewToolUseBlock(call.ID, call.Arguments, call.Name))
	}
	return blocks, nil
}

func toolResultContent(result agent.ToolResultPart) (string, error) {
	if result.IsError() {
		return result.Error, nil
	}
	switch v := result.Result.(type) {
	case string:
		return v, nil
	default:
		payload, err := json.Marshal(v)
		if err != nil {
			return "", agent.WrapProtocolError("anthropic", fmt.Sprintf("tool result for %q did not marshal to JSON", result.Name), err)
		}
		return string(payload), nil
	}
}

// encodeTools converts a ToolSet into Anthropic's tool wire format. The
// input schema travels as free-form extra fields rather than a typed
// Properties/Required pair, since Anthropic's tool schema accepts the full
// JSON Schema vocabulary (enum, items, nested $refs) and the SDK's
// ToolInputSchemaParam is deliberately schema-shaped-agnostic.
func encodeTools(tools agent.ToolSet) ([]sdk.ToolUnionParam, error) {
	out := make([]sdk.ToolUnionParam, len(tools))
	for i, t := range tools {
		inputSchema, err := toInputSchemaParam(t.InputSchema)
		if err != nil {
			return nil, err
		}
		u := sdk.ToolUnionParamOfTool(inputSchema, t.Name)
		if u.OfTool != nil {
			u.OfTool.Description = sdk.String(t.Description)
		}
		out[i] = u
	}
	return out, nil
}

func toInputSchemaParam(s *schema.Schema) (sdk.ToolInputSchemaParam, error) {
	if s == nil {
		return sdk.ToolInputSchemaParam{ExtraFields: map[string]any{"type": "object"}}, nil
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return sdk.ToolInputSchemaParam{}, agent.WrapProtocolError("anthropic", "tool schema did not marshal to JSON", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return sdk.ToolInputSchemaParam{}, agent.WrapProtocolError("anthropic", "tool schema did not decode", err)
	}
	return sdk.ToolInputSchemaParam{ExtraFields: fields}, nil
}

func finishReasonFrom(reason string) agent.FinishReason {
	switch reason {
	case "end_turn", "stop_sequence":
		return agent.FinishReasonStop
	case "max_tokens":
		return agent.FinishReasonLength
	case "tool_use":
		return agent.FinishReasonToolCalls
	case "":
		return agent.FinishReasonUnspecified
	default:
		return agent.FinishReasonUnspecified
	}
}
