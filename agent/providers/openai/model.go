package openai

import (
	"context"
	"encoding/json"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/shared"

	"github.com/taipm/agentic/agent"
)

type chatModel struct {
	client openaisdk.Client
	model  string
	logger agent.Logger
}

// NewChatModel constructs an OpenAI-backed agent.ChatModel.
func NewChatModel(cfg agent.ModelConfig) (agent.ChatModel, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = agent.NoopLogger{}
	}
	return &chatModel{client: newClient(cfg), model: cfg.Model, logger: logger}, nil
}

func (m *chatModel) Close() error { return nil }

func (m *chatModel) SendStream(ctx context.Context, history []agent.Message, opts agent.ModelOptions) (<-chan agent.StreamChunk, error) {
	messages, err := toProviderMessages(history)
	if err != nil {
		return nil, err
	}

	params := openaisdk.ChatCompletionNewParams{
		Model:    openaisdk.ChatModel(m.model),
		Messages: messages,
	}

	if len(opts.Tools) > 0 {
		tools, err := toProviderTools(opts.Tools)
		if err != nil {
			return nil, err
		}
		params.Tools = tools
	}

	if opts.OutputSchema != nil {
		raw, err := json.Marshal(opts.OutputSchema)
		if err != nil {
			return nil, agent.WrapProtocolError("openai", "output schema did not marshal to JSON", err)
		}
		var schemaMap map[string]any
		if err := json.Unmarshal(raw, &schemaMap); err != nil {
			return nil, agent.WrapProtocolError("openai", "output schema did not decode", err)
		}
		params.ResponseFormat = openaisdk.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "output",
					Schema: schemaMap,
					Strict: openaisdk.Bool(true),
				},
			},
		}
	}

	out := make(chan agent.StreamChunk)
	go m.streamLoop(ctx, params, out)
	return out, nil
}

// streamLoop drives the SDK's own ChatCompletionAccumulator rather than
// parsing each chunk's tool-call delta by hand: text deltas arrive as
// complete substrings and are safe to forward live, but a tool call's
// arguments are split across chunks as raw JSON text fragments that only
// become parseable once the accumulator has joined them all.
func (m *chatModel) streamLoop(ctx context.Context, params openaisdk.ChatCompletionNewParams, out chan<- agent.StreamChunk) {
	defer close(out)

	stream := m.client.Chat.Completions.NewStreaming(ctx, params)
	acc := openaisdk.ChatCompletionAccumulator{}

	var lastID string
	var finishReason agent.FinishReason
	var usage agent.Usage

	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)
		lastID = chunk.ID

		if chunk.Usage.TotalTokens > 0 {
			prompt := int(chunk.Usage.PromptTokens)
			completion := int(chunk.Usage.CompletionTokens)
			total := int(chunk.Usage.TotalTokens)
			usage = agent.Usage{PromptTokens: &prompt, ResponseTokens: &completion, TotalTokens: &total}
		}

		if len(chunk.Choices) == 0 {
			continue
		}
		choice := chunk.Choices[0]
		if choice.FinishReason != "" {
			finishReason = finishReasonFrom(string(choice.FinishReason))
		}
		if choice.Delta.Content == "" {
			continue
		}

		result := agent.ChatStreamResult{
			Output: agent.Message{Role: agent.RoleModel, Parts: []agent.Part{agent.TextPart{Text: choice.Delta.Content}}},
			ID:     chunk.ID,
		}
		select {
		case out <- agent.StreamChunk{Result: result}:
		case <-ctx.Done():
			return
		}
	}

	if err := stream.Err(); err != nil {
		select {
		case out <- agent.StreamChunk{Err: agent.WrapNetworkError("openai", err)}:
		case <-ctx.Done():
		}
		return
	}

	var parts []agent.Part
	if len(acc.Choices) > 0 {
		toolParts, err := toolCallPartsFromAccumulated(acc.Choices[0].Message.ToolCalls)
		if err != nil {
			select {
			case out <- agent.StreamChunk{Err: err}:
			case <-ctx.Done():
			}
			return
		}
		parts = toolParts
	}

	final := agent.ChatStreamResult{
		Output:       agent.Message{Role: agent.RoleModel, Parts: parts},
		FinishReason: finishReason,
		ID:           lastID,
		Usage:        usage,
	}
	select {
	case out <- agent.StreamChunk{Result: final}:
	case <-ctx.Done():
	}
}
