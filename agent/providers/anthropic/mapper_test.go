package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taipm/agentic/agent"
	"github.com/taipm/agentic/agent/schema"
)

func TestEncodeHistory_PullsSystemOutOfTurns(t *testing.T) {
	history := []agent.Message{
		agent.System("be concise"),
		agent.User("hi"),
		agent.Model("hello"),
	}
	system, messages, err := encodeHistory(history)
	require.NoError(t, err)
	require.Len(t, system, 1)
	assert.Equal(t, "be concise", system[0].Text)
	assert.Len(t, messages, 2)
}

func TestEncodeHistory_ToolResultBecomesToolResultBlock(t *testing.T) {
	history := []agent.Message{
		{Role: agent.RoleUser, Parts: []agent.Part{agent.ToolResultPart{ID: "call_1", Name: "weather", Result: map[string]any{"temp": 70}}}},
	}
	_, messages, err := encodeHistory(history)
	require.NoError(t, err)
	require.Len(t, messages, 1)
}

func TestEncodeTools_CarriesSchemaAsExtraFields(t *testing.T) {
	tools := agent.ToolSet{
		{Name: "weather", Description: "look up weather", InputSchema: schema.Object(map[string]*schema.Schema{
			"location": schema.String("city name"),
		}, "location")},
	}
	out, err := encodeTools(tools)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.NotNil(t, out[0].OfTool)
	assert.Equal(t, "weather", out[0].OfTool.Name)
	assert.Equal(t, "object", out[0].OfTool.InputSchema.ExtraFields["type"])
}

func TestFinishReasonFrom(t *testing.T) {
	assert.Equal(t, agent.FinishReasonStop, finishReasonFrom("end_turn"))
	assert.Equal(t, agent.FinishReasonToolCalls, finishReasonFrom("tool_use"))
	assert.Equal(t, agent.FinishReasonLength, finishReasonFrom("max_tokens"))
	assert.Equal(t, agent.FinishReasonUnspecified, finishReasonFrom("whatever"))
}

func TestToolBuffer_JoinsFragmentsBeforeParsing(t *testing.T) {
	tb := &toolBuffer{id: "call_1", name: "weather", fragments: []string{`{"locat`, `ion":"Bos`, `ton"}`}}
	args, err := tb.arguments()
	require.NoError(t, err)
	assert.Equal(t, "Boston", args["location"])
}

func TestToolBuffer_RejectsMalformedJoinedJSON(t *testing.T) {
	tb := &toolBuffer{id: "call_1", name: "weather", fragments: []string{`{"locat`}}
	_, err := tb.arguments()
	assert.True(t, agent.IsProviderProtocolError(err))
}
