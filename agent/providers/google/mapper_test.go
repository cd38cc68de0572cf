package google

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/taipm/agentic/agent"
	"github.com/taipm/agentic/agent/schema"
)

func TestToContents_PullsSystemOutOfTurns(t *testing.T) {
	history := []agent.Message{
		agent.System("be concise"),
		agent.User("hi"),
		agent.Model("hello"),
	}
	system, contents, err := toContents(history)
	require.NoError(t, err)
	assert.Equal(t, "be concise", system)
	assert.Len(t, contents, 2)
}

func TestToContents_ToolResultBecomesFunctionResponsePart(t *testing.T) {
	history := []agent.Message{
		{Role: agent.RoleUser, Parts: []agent.Part{agent.ToolResultPart{ID: "call_1", Name: "weather", Result: map[string]any{"temp": 70}}}},
	}
	_, contents, err := toContents(history)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	require.Len(t, contents[0].Parts, 1)
	assert.NotNil(t, contents[0].Parts[0].FunctionResponse)
	assert.Equal(t, "weather", contents[0].Parts[0].FunctionResponse.Name)
}

func TestModelContent_ToolCallKeepsNameAndArgs(t *testing.T) {
	msg := agent.Message{Role: agent.RoleModel, Parts: []agent.Part{
		agent.ToolCallPart{ID: "call_1", Name: "weather", Arguments: map[string]any{"location": "Boston"}},
	}}
	content := modelContent(msg)
	require.Len(t, content.Parts, 1)
	require.NotNil(t, content.Parts[0].FunctionCall)
	assert.Equal(t, "weather", content.Parts[0].FunctionCall.Name)
	assert.Equal(t, "Boston", content.Parts[0].FunctionCall.Args["location"])
}

func TestToTools_ConvertsSchema(t *testing.T) {
	tools := agent.ToolSet{
		{Name: "weather", Description: "look up weather", InputSchema: schema.Object(map[string]*schema.Schema{
			"location": schema.String("city name"),
		}, "location")},
	}
	out := toTools(tools)
	require.Len(t, out, 1)
	require.Len(t, out[0].FunctionDeclarations, 1)
	decl := out[0].FunctionDeclarations[0]
	assert.Equal(t, "weather", decl.Name)
	assert.Equal(t, genai.TypeObject, decl.Parameters.Type)
	assert.Contains(t, decl.Parameters.Required, "location")
}

func TestPartsToMessage_TextAndFunctionCall(t *testing.T) {
	parts := []*genai.Part{
		genai.NewPartFromText("let me check"),
		{FunctionCall: &genai.FunctionCall{Name: "weather", Args: map[string]any{"location": "Boston"}}},
	}
	msg := partsToMessage(parts)
	require.Len(t, msg.Parts, 2)
	call, ok := msg.Parts[1].(agent.ToolCallPart)
	require.True(t, ok)
	assert.Equal(t, "", call.ID)
	assert.Equal(t, "weather", call.Name)
}

func TestFinishReasonFrom(t *testing.T) {
	assert.Equal(t, agent.FinishReasonStop, finishReasonFrom(genai.FinishReason("STOP"), false))
	assert.Equal(t, agent.FinishReasonToolCalls, finishReasonFrom(genai.FinishReason("STOP"), true))
	assert.Equal(t, agent.FinishReasonLength, finishReasonFrom(genai.FinishReason("MAX_TOKENS"), false))
	assert.Equal(t, agent.FinishReasonContentFilter, finishReasonFrom(genai.FinishReason("SAFETY"), false))
	assert.Equal(t, agent.FinishReasonUnspecified, finishReasonFrom(genai.FinishReason("WHATEVER"), false))
}
