package anthropic

import (
	"context"
	"encoding/json"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/taipm/agentic/agent"
)

// defaultMaxTokens is used when the caller does not configure one via
// ModelOptions.Extra["maxTokens"]. The Messages API requires max_tokens on
// every request; unlike OpenAI's optional cap, Anthropic has no server-side
// default to fall back on.
const defaultMaxTokens = 4096

type chatModel struct {
	client sdk.Client
	model  string
	logger agent.Logger
}

// NewChatModel constructs an Anthropic-backed agent.ChatModel.
func NewChatModel(cfg agent.ModelConfig) (agent.ChatModel, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = agent.NoopLogger{}
	}
	return &chatModel{client: newClient(cfg), model: cfg.Model, logger: logger}, nil
}

func (m *chatModel) Close() error { return nil }

func (m *chatModel) SendStream(ctx context.Context, history []agent.Message, opts agent.ModelOptions) (<-chan agent.StreamChunk, error) {
	system, messages, err := encodeHistory(history)
	if err != nil {
		return nil, err
	}

	params := sdk.MessageNewParams{
		Model:     sdk.Model(m.model),
		MaxTokens: maxTokensFrom(opts),
		Messages:  messages,
	}
	if len(system) > 0 {
		params.System = system
	}
	if len(opts.Tools) > 0 {
		tools, err := encodeTools(opts.Tools)
		if err != nil {
			return nil, err
		}
		params.Tools = tools
	}

	out := make(chan agent.StreamChunk)
	go m.streamLoop(ctx, params, out)
	return out, nil
}

func maxTokensFrom(opts agent.ModelOptions) int64 {
	if v, ok := opts.Extra["maxTokens"]; ok {
		if n, ok := v.(int); ok && n > 0 {
			return int64(n)
		}
	}
	return defaultMaxTokens
}

// toolBuffer accumulates one tool_use content block's input_json_delta
// fragments. Like OpenAI's argument deltas, each fragment is raw partial
// JSON text — only the joined whole is guaranteed to parse.
type toolBuffer struct {
	id        string
	name      string
	fragments []string
}

func (tb *toolBuffer) arguments() (map[string]any, error) {
	joined := strings.Join(tb.fragments, "")
	if strings.TrimSpace(joined) == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(joined), &args); err != nil {
		return nil, agent.WrapProtocolError("anthropic", "tool call \""+tb.name+"\" arguments did not decode as JSON", err)
	}
	return args, nil
}

// streamLoop walks the Messages API's server-sent event stream, buffering
// each tool_use block's JSON text by content-block index and only emitting
// a ToolCallPart once its content_block_stop event closes the block. Text
// deltas stream live since each one already is a complete text fragment.
func (m *chatModel) streamLoop(ctx context.Context, params sdk.MessageNewParams, out chan<- agent.StreamChunk) {
	defer close(out)

	stream := m.client.Messages.NewStreaming(ctx, params)

	toolBlocks := make(map[int64]*toolBuffer)
	var messageID string
	var finishReason agent.FinishReason
	var usage agent.Usage

	for stream.Next() {
		if err := ctx.Err(); err != nil {
			return
		}
		event := stream.Current()

		switch ev := event.AsAny().(type) {
		case sdk.MessageStartEvent:
			messageID = ev.Message.ID

		case sdk.ContentBlockStartEvent:
			if toolUse, ok := ev.ContentBlock.AsAny().(sdk.ToolUseBlock); ok {
				toolBlocks[ev.Index] = &toolBuffer{id: toolUse.ID, name: toolUse.Name}
			}

		case sdk.ContentBlockDeltaEvent:
			switch delta := ev.Delta.AsAny().(type) {
			case sdk.TextDelta:
				if delta.Text == "" {
					continue
				}
				result := agent.ChatStreamResult{
					Output: agent.Message{Role: agent.RoleModel, Parts: []agent.Part{agent.TextPart{Text: delta.Text}}},
					ID:     messageID,
				}
				if !emit(ctx, out, agent.StreamChunk{Result: result}) {
					return
				}
			case sdk.InputJSONDelta:
				if tb := toolBlocks[ev.Index]; tb != nil && delta.PartialJSON != "" {
					tb.fragments = append(tb.fragments, delta.PartialJSON)
				}
			}

		case sdk.ContentBlockStopEvent:
			tb, ok := toolBlocks[ev.Index]
			if !ok {
				continue
			}
			delete(toolBlocks, ev.Index)
			args, err := tb.arguments()
			if err != nil {
				emit(ctx, out, agent.StreamChunk{Err: err})
				return
			}
			result := agent.ChatStreamResult{
				Output: agent.Message{Role: agent.RoleModel, Parts: []agent.Part{
					agent.ToolCallPart{ID: tb.id, Name: tb.name, Arguments: args},
				}},
				ID: messageID,
			}
			if !emit(ctx, out, agent.StreamChunk{Result: result}) {
				return
			}

		case sdk.MessageDeltaEvent:
			finishReason = finishReasonFrom(string(ev.Delta.StopReason))
			prompt := int(ev.Usage.InputTokens)
			completion := int(ev.Usage.OutputTokens)
			total := prompt + completion
			usage = agent.Usage{PromptTokens: &prompt, ResponseTokens: &completion, TotalTokens: &total}
		}
	}

	if err := stream.Err(); err != nil {
		emit(ctx, out, agent.StreamChunk{Err: agent.WrapNetworkError("anthropic", err)})
		return
	}

	emit(ctx, out, agent.StreamChunk{Result: agent.ChatStreamResult{
		Output:       agent.Message{Role: agent.RoleModel},
		FinishReason: finishReason,
		ID:           messageID,
		Usage:        usage,
	}})
}

func emit(ctx context.Context, out chan<- agent.StreamChunk, chunk agent.StreamChunk) bool {
	select {
	case out <- chunk:
		return true
	case <-ctx.Done():
		return false
	}
}
