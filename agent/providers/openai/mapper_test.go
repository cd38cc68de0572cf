package openai

import (
	"testing"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taipm/agentic/agent"
)

func TestToProviderMessages_SystemUserModel(t *testing.T) {
	history := []agent.Message{
		agent.System("be concise"),
		agent.User("hi"),
		agent.Model("hello"),
	}
	out, err := toProviderMessages(history)
	require.NoError(t, err)
	assert.Len(t, out, 3)
}

func TestToProviderMessages_ToolResultBecomesToolMessage(t *testing.T) {
	history := []agent.Message{
		{Role: agent.RoleUser, Parts: []agent.Part{agent.ToolResultPart{ID: "call_1", Name: "weather", Result: map[string]any{"temp": 70}}}},
	}
	out, err := toProviderMessages(history)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.NotNil(t, out[0].OfTool)
	assert.Equal(t, "call_1", out[0].OfTool.ToolCallID)
}

func TestMapModelMessage_WithToolCalls(t *testing.T) {
	msg := agent.Message{Role: agent.RoleModel, Parts: []agent.Part{
		agent.ToolCallPart{ID: "call_1", Name: "weather", Arguments: map[string]any{"location": "Boston"}},
	}}
	out := mapModelMessage(msg)
	require.NotNil(t, out.OfAssistant)
	require.Len(t, out.OfAssistant.ToolCalls, 1)
	assert.Equal(t, "call_1", out.OfAssistant.ToolCalls[0].OfFunction.ID)
}

func TestSchemaToFunctionParameters_NilSchema(t *testing.T) {
	params, err := schemaToFunctionParameters(nil)
	require.NoError(t, err)
	assert.Equal(t, "object", params["type"])
}

func TestToolCallPartsFromAccumulated_DecodesJoinedArguments(t *testing.T) {
	calls := []openaisdk.ChatCompletionMessageToolCallUnion{
		{ID: "call_1", Function: openaisdk.ChatCompletionMessageToolCallUnionFunction{Name: "weather", Arguments: `{"location":"Boston"}`}},
	}
	parts, err := toolCallPartsFromAccumulated(calls)
	require.NoError(t, err)
	require.Len(t, parts, 1)
	call, ok := parts[0].(agent.ToolCallPart)
	require.True(t, ok)
	assert.Equal(t, "Boston", call.Arguments["location"])
}

func TestToolCallPartsFromAccumulated_RejectsMalformedArguments(t *testing.T) {
	calls := []openaisdk.ChatCompletionMessageToolCallUnion{
		{ID: "call_1", Function: openaisdk.ChatCompletionMessageToolCallUnionFunction{Name: "weather", Arguments: `{"locat`}},
	}
	_, err := toolCallPartsFromAccumulated(calls)
	assert.True(t, agent.IsProviderProtocolError(err))
}

func TestFinishReasonFrom(t *testing.T) {
	assert.Equal(t, agent.FinishReasonStop, finishReasonFrom("stop"))
	assert.Equal(t, agent.FinishReasonToolCalls, finishReasonFrom("tool_calls"))
	assert.Equal(t, agent.FinishReasonUnspecified, finishReasonFrom("whatever"))
}
