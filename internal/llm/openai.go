package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/loamlabs/loamlabs-shop-tech-agent/internal/logging"
)

var _ Client = (*OpenAIClient)(nil)

// OpenAIClient talks to the OpenAI chat completions API (or any
// OpenAI-compatible endpoint via a custom base URL).
type OpenAIClient struct {
	client *openai.Client
	model  string
	log    *logging.Logger
}

// OpenAIConfig configures the OpenAI client.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // optional; empty uses api.openai.com
	Timeout time.Duration
}

// NewOpenAIClient creates a client for the configured model.
func NewOpenAIClient(cfg OpenAIConfig, log *logging.Logger) *OpenAIClient {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(oc),
		model:  cfg.Model,
		log:    log.Sub("llm"),
	}
}

// Name returns the provider name.
func (c *OpenAIClient) Name() string { return "openai" }

// Complete sends a non-streaming completion request.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (*Response, error) {
	resp, err := c.client.CreateChatCompletion(ctx, c.buildRequest(req, false))
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no choices in completion response")
	}

	choice := resp.Choices[0]
	return &Response{
		Message:      fromOpenAIMessage(choice.Message),
		FinishReason: string(choice.FinishReason),
	}, nil
}

// Stream sends a streaming completion request. Text deltas are emitted as
// they arrive; tool-call argument fragments are accumulated by index and
// delivered on the final "done" event.
func (c *OpenAIClient) Stream(ctx context.Context, req Request) (<-chan StreamEvent, error) {
	stream, err := c.client.CreateChatCompletionStream(ctx, c.buildRequest(req, true))
	if err != nil {
		return nil, fmt.Errorf("chat stream: %w", err)
	}

	events := make(chan StreamEvent)
	go c.pump(ctx, stream, events)
	return events, nil
}

func (c *OpenAIClient) pump(ctx context.Context, stream *openai.ChatCompletionStream, events chan<- StreamEvent) {
	defer close(events)
	defer stream.Close()

	var (
		text         string
		finishReason string
		toolCalls    = make(map[int]*ToolCall)
	)

	for {
		chunk, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if ctx.Err() != nil {
				// Caller went away; nothing is listening for an error event.
				c.log.Debug().Msg("stream cancelled")
				return
			}
			c.log.Error().Err(err).Msg("stream recv failed")
			events <- StreamEvent{Type: "error", Error: err.Error()}
			return
		}

		if len(chunk.Choices) == 0 {
			continue
		}
		choice := chunk.Choices[0]
		if choice.FinishReason != "" {
			finishReason = string(choice.FinishReason)
		}

		delta := choice.Delta
		if delta.Content != "" {
			text += delta.Content
			select {
			case events <- StreamEvent{Type: "delta", Content: delta.Content}:
			case <-ctx.Done():
				return
			}
		}

		for _, tc := range delta.ToolCalls {
			if tc.Index == nil {
				continue
			}
			idx := *tc.Index
			existing, ok := toolCalls[idx]
			if !ok {
				existing = &ToolCall{}
				toolCalls[idx] = existing
			}
			if tc.ID != "" {
				existing.ID = tc.ID
			}
			if tc.Function.Name != "" {
				existing.Name = tc.Function.Name
			}
			existing.Arguments += tc.Function.Arguments
		}
	}

	msg := Message{Role: RoleAssistant, Content: text}

	indices := make([]int, 0, len(toolCalls))
	for idx := range toolCalls {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	for _, idx := range indices {
		msg.ToolCalls = append(msg.ToolCalls, *toolCalls[idx])
	}

	c.log.Debug().
		Int("textLen", len(text)).
		Int("toolCalls", len(msg.ToolCalls)).
		Str("finishReason", finishReason).
		Msg("stream complete")

	select {
	case events <- StreamEvent{
		Type:     "done",
		Response: &Response{Message: msg, FinishReason: finishReason},
	}:
	case <-ctx.Done():
	}
}

func (c *OpenAIClient) buildRequest(req Request, stream bool) openai.ChatCompletionRequest {
	out := openai.ChatCompletionRequest{
		Model:     c.model,
		Messages:  toOpenAIMessages(req.System, req.Messages),
		MaxTokens: req.MaxTokens,
		Stream:    stream,
	}
	if req.Model != "" {
		out.Model = req.Model
	}
	if req.Temperature != nil {
		out.Temperature = float32(*req.Temperature)
	}
	if len(req.Tools) > 0 {
		out.Tools = toOpenAITools(req.Tools)
		out.ToolChoice = "auto"
	}
	return out
}

func toOpenAIMessages(system string, messages []Message) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if system != "" {
		result = append(result, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}

	for _, msg := range messages {
		m := openai.ChatCompletionMessage{
			Role:       msg.Role,
			Content:    msg.Content,
			ToolCallID: msg.ToolCallID,
			Name:       msg.Name,
		}
		for _, tc := range msg.ToolCalls {
			m.ToolCalls = append(m.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		result = append(result, m)
	}
	return result
}

func toOpenAITools(tools []ToolDefinition) []openai.Tool {
	result := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		result = append(result, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return result
}

func fromOpenAIMessage(msg openai.ChatCompletionMessage) Message {
	result := Message{
		Role:    msg.Role,
		Content: msg.Content,
	}
	for _, tc := range msg.ToolCalls {
		result.ToolCalls = append(result.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return result
}
