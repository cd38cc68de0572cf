package google

import (
	"context"

	"google.golang.org/genai"

	"github.com/taipm/agentic/agent"
)

type chatModel struct {
	client *genai.Client
	model  string
	logger agent.Logger
}

// NewChatModel constructs a Gemini-backed agent.ChatModel.
func NewChatModel(cfg agent.ModelConfig) (agent.ChatModel, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = agent.NoopLogger{}
	}
	client, err := newClient(context.Background(), cfg)
	if err != nil {
		return nil, agent.WrapNetworkError("google", err)
	}
	return &chatModel{client: client, model: cfg.Model, logger: logger}, nil
}

func (m *chatModel) Close() error { return nil }

// SendStream drives the turn through a fresh chat session seeded with every
// message but the last, then streams the final turn through it. Gemini's
// SDK only exposes streaming on a *genai.Chat, not on a stateless
// generate-content call, so a new session is built on every call to keep
// this model stateless the way the other providers are — the caller always
// hands in the full history, never relies on the session surviving between
// calls.
func (m *chatModel) SendStream(ctx context.Context, history []agent.Message, opts agent.ModelOptions) (<-chan agent.StreamChunk, error) {
	if len(history) == 0 {
		return nil, agent.WrapProtocolError("google", "cannot send an empty history", nil)
	}

	system, contents, err := toContents(history[:len(history)-1])
	if err != nil {
		return nil, err
	}
	lastParts, err := lastTurnParts(history[len(history)-1])
	if err != nil {
		return nil, err
	}

	config := &genai.GenerateContentConfig{}
	if system != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{genai.NewPartFromText(system)}}
	}
	if len(opts.Tools) > 0 {
		config.Tools = toTools(opts.Tools)
	}

	chat, err := m.client.Chats.Create(ctx, m.model, config, contents)
	if err != nil {
		return nil, agent.WrapNetworkError("google", err)
	}

	out := make(chan agent.StreamChunk)
	go m.streamLoop(ctx, chat, lastParts, out)
	return out, nil
}

// lastTurnParts re-derives the parts for the final history entry, covering
// both a user turn (text and/or tool results) and a model turn (text and/or
// tool calls) so a retried tool round-trip still has something sendable.
func lastTurnParts(msg agent.Message) ([]*genai.Part, error) {
	switch msg.Role {
	case agent.RoleModel:
		content := modelContent(msg)
		return content.Parts, nil
	default:
		content, err := userContent(msg)
		if err != nil {
			return nil, err
		}
		if content == nil {
			return nil, nil
		}
		return content.Parts, nil
	}
}

// streamLoop drains the chat session's streaming iterator. Each yielded
// response carries the next increment of the candidate's text plus any
// function calls, so its parts are converted and emitted as they arrive for
// the orchestrator's accumulator to join; Gemini
// issues no call ID of its own, so tool calls leave here with an empty ID
// for the orchestrator's coordinator to fill in once the turn lands in
// history.
func (m *chatModel) streamLoop(ctx context.Context, chat *genai.Chat, parts []*genai.Part, out chan<- agent.StreamChunk) {
	defer close(out)

	var finishReason agent.FinishReason
	var usage agent.Usage

	for resp, err := range chat.SendMessageStream(ctx, parts...) {
		if err != nil {
			select {
			case out <- agent.StreamChunk{Err: agent.WrapNetworkError("google", err)}:
			case <-ctx.Done():
			}
			return
		}
		if len(resp.Candidates) == 0 {
			continue
		}
		candidate := resp.Candidates[0]
		if candidate.Content == nil {
			continue
		}

		message := partsToMessage(candidate.Content.Parts)
		hasToolCalls := len(message.ToolCalls()) > 0
		finishReason = finishReasonFrom(candidate.FinishReason, hasToolCalls)

		if resp.UsageMetadata != nil {
			prompt := int(resp.UsageMetadata.PromptTokenCount)
			completion := int(resp.UsageMetadata.CandidatesTokenCount)
			total := int(resp.UsageMetadata.TotalTokenCount)
			usage = agent.Usage{PromptTokens: &prompt, ResponseTokens: &completion, TotalTokens: &total}
		}

		if len(message.Parts) == 0 {
			continue
		}
		result := agent.ChatStreamResult{Output: message}
		select {
		case out <- agent.StreamChunk{Result: result}:
		case <-ctx.Done():
			return
		}
	}

	select {
	case out <- agent.StreamChunk{Result: agent.ChatStreamResult{
		Output:       agent.Message{Role: agent.RoleModel},
		FinishReason: finishReason,
		Usage:        usage,
	}}:
	case <-ctx.Done():
	}
}
