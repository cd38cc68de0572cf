package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registryWithFakeProvider(t *testing.T, model *scriptedModel) *Registry {
	t.Helper()
	r := NewRegistry()
	r.Register(Provider{
		Name:         "fake",
		DisplayName:  "Fake",
		APIKeyName:   "FAKE_API_KEY",
		Capabilities: []Capability{CapabilityChat, CapabilityTypedOutput},
		NewChatModel: func(cfg ModelConfig) (ChatModel, error) {
			return model, nil
		},
	})
	return r
}

func TestAgent_Send_HelloWorld(t *testing.T) {
	model := &scriptedModel{responses: [][]StreamChunk{{textFrame("Hi there", FinishReasonStop)}}}
	r := registryWithFakeProvider(t, model)

	a, err := New("fake", WithRegistry(r), WithAPIKey("key"))
	require.NoError(t, err)

	result, err := a.Send(context.Background(), "Say hi in one word.")
	require.NoError(t, err)
	assert.Equal(t, "Hi there", result.Output)
	assert.Len(t, result.Messages, 2) // user prompt + model reply
	assert.Equal(t, FinishReasonStop, result.FinishReason)
}

func TestAgent_New_UnknownProvider(t *testing.T) {
	r := NewRegistry()
	_, err := New("nonexistent", WithRegistry(r))
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
}

func TestAgent_Send_MissingAPIKeyFailsLazily(t *testing.T) {
	model := &scriptedModel{}
	r := registryWithFakeProvider(t, model)

	a, err := New("fake", WithRegistry(r))
	require.NoError(t, err, "construction succeeds even without an API key")

	_, err = a.Send(context.Background(), "hi")
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
}

func TestSendFor_NativeStrategy(t *testing.T) {
	model := &scriptedModel{responses: [][]StreamChunk{
		{textFrame(`{"city":"Chicago","country":"United States"}`, FinishReasonStop)},
	}}
	r := registryWithFakeProvider(t, model)
	a, err := New("fake", WithRegistry(r), WithAPIKey("key"))
	require.NoError(t, err)

	type place struct {
		City    string `json:"city"`
		Country string `json:"country"`
	}

	result, err := SendFor[place](context.Background(), a, "The windy city", nil, JSONInto[place])
	require.NoError(t, err)
	assert.Equal(t, "Chicago", result.Output.City)
}
