package openai

import (
	"encoding/json"
	"fmt"

	openaisdk "github.com/openai/openai-go/v3"

	"github.com/taipm/agentic/agent"
	"github.com/taipm/agentic/agent/schema"
)

// toProviderMessages maps a canonical history into OpenAI's wire format.
// System messages pass through as OpenAI system messages (OpenAI, unlike
// Anthropic, accepts them inline rather than as a separate parameter).
func toProviderMessages(history []agent.Message) ([]openaisdk.ChatCompletionMessageParamUnion, error) {
	out := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case agent.RoleSystem:
			out = append(out, openaisdk.SystemMessage(msg.Text()))
		case agent.RoleUser:
			mapped, err := mapUserMessage(msg)
			if err != nil {
				return nil, err
			}
			out = append(out, mapped...)
		case agent.RoleModel:
			out = append(out, mapModelMessage(msg))
		}
	}
	return out, nil
}

// mapUserMessage splits a user message into OpenAI turns: plain text
// collapses into one user message; any tool results become one
// openai.ToolMessage per result, since OpenAI requires one tool-result
// entry per call with matching IDs (unlike Gemini's batched form).
func mapUserMessage(msg agent.Message) ([]openaisdk.ChatCompletionMessageParamUnion, error) {
	var out []openaisdk.ChatCompletionMessageParamUnion
	if text := msg.Text(); text != "" {
		out = append(out, openaisdk.UserMessage(text))
	}
	for _, result := range msg.ToolResults() {
		content, err := toolResultContent(result)
		if err != nil {
			return nil, err
		}
		out = append(out, openaisdk.ToolMessage(content, result.ID))
	}
	return out, nil
}

func toolResultContent(result agent.ToolResultPart) (string, error) {
	if result.IsError() {
		payload, _ := json.Marshal(map[string]string{"error": result.Error})
		return string(payload), nil
	}
	switch v := result.Result.(type) {
	case string:
		return v, nil
	default:
		payload, err := json.Marshal(v)
		if err != nil {
			return "", agent.WrapProtocolError("openai", fmt.Sprintf("tool result for %q did not marshal to JSON", result.Name), err)
		}
		return string(payload), nil
	}
}

// mapModelMessage builds the OpenAI assistant turn, including tool calls
// when present.
func mapModelMessage(msg agent.Message) openaisdk.ChatCompletionMessageParamUnion {
	calls := msg.ToolCalls()
	if len(calls) == 0 {
		return openaisdk.AssistantMessage(msg.Text())
	}

	toolCallParams := make([]openaisdk.ChatCompletionMessageToolCallUnionParam, len(calls))
	for i, c := range calls {
		args, _ := json.Marshal(c.Arguments)
		toolCallParams[i] = openaisdk.ChatCompletionMessageToolCallUnionParam{
			OfFunction: &openaisdk.ChatCompletionMessageFunctionToolCallParam{
				ID: c.ID,
				Function: openaisdk.ChatCompletionMessageFunctionToolCallFunctionParam{
					Name:      c.Name,
					Arguments: string(args),
				},
			},
		}
	}

	assistant := openaisdk.ChatCompletionAssistantMessageParam{ToolCalls: toolCallParams}
	if text := msg.Text(); text != "" {
		assistant.Content = openaisdk.ChatCompletionAssistantMessageParamContentUnion{
			OfString: openaisdk.String(text),
		}
	}
	return openaisdk.ChatCompletionMessageParamUnion{OfAssistant: &assistant}
}

// toProviderTools converts a ToolSet into OpenAI's function-tool wire
// format. Schemas pass through largely verbatim — OpenAI accepts vanilla
// JSON Schema, unlike Gemini's constrained subset.
func toProviderTools(tools agent.ToolSet) ([]openaisdk.ChatCompletionToolUnionParam, error) {
	out := make([]openaisdk.ChatCompletionToolUnionParam, len(tools))
	for i, t := range tools {
		params, err := schemaToFunctionParameters(t.InputSchema)
		if err != nil {
			return nil, err
		}
		out[i] = openaisdk.ChatCompletionFunctionTool(openaisdk.FunctionDefinitionParam{
			Name:        t.Name,
			Description: openaisdk.String(t.Description),
			Parameters:  params,
		})
	}
	return out, nil
}

func schemaToFunctionParameters(s *schema.Schema) (openaisdk.FunctionParameters, error) {
	if s == nil {
		return openaisdk.FunctionParameters{"type": "object", "properties": map[string]any{}}, nil
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, agent.WrapProtocolError("openai", "tool schema did not marshal to JSON", err)
	}
	var params openaisdk.FunctionParameters
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, agent.WrapProtocolError("openai", "tool schema did not decode to a JSON object", err)
	}
	return params, nil
}

// toolCallPartsFromAccumulated converts the fully-buffered tool calls a
// ChatCompletionAccumulator assembles once a stream finishes. OpenAI sends
// each call's arguments as raw JSON text fragments split arbitrarily across
// chunks — a fragment like `{"locat` is not valid JSON on its own, so
// arguments can only be decoded after the accumulator has joined every
// fragment for that call.
func toolCallPartsFromAccumulated(calls []openaisdk.ChatCompletionMessageToolCallUnion) ([]agent.Part, error) {
	parts := make([]agent.Part, 0, len(calls))
	for _, tc := range calls {
		var args map[string]any
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				return nil, agent.WrapProtocolError("openai", fmt.Sprintf("tool call %q arguments did not decode as JSON", tc.Function.Name), err)
			}
		}
		parts = append(parts, agent.ToolCallPart{ID: tc.ID, Name: tc.Function.Name, Arguments: args})
	}
	return parts, nil
}

func finishReasonFrom(reason string) agent.FinishReason {
	switch reason {
	case "stop":
		return agent.FinishReasonStop
	case "length":
		return agent.FinishReasonLength
	case "tool_calls":
		return agent.FinishReasonToolCalls
	case "content_filter":
		return agent.FinishReasonContentFilter
	case "":
		return agent.FinishReasonUnspecified
	default:
		return agent.FinishReasonUnspecified
	}
}
