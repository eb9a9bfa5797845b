package llm

import "context"

// MockClient is a test double for Client.
type MockClient struct {
	ProviderName string
	CompleteFunc func(ctx context.Context, req Request) (*Response, error)
	StreamFunc   func(ctx context.Context, req Request) (<-chan StreamEvent, error)
}

func (m *MockClient) Name() string {
	if m.ProviderName != "" {
		return m.ProviderName
	}
	return "mock"
}

func (m *MockClient) Complete(ctx context.Context, req Request) (*Response, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return &Response{Message: Message{Role: RoleAssistant, Content: "mock response"}}, nil
}

func (m *MockClient) Stream(ctx context.Context, req Request) (<-chan StreamEvent, error) {
	if m.StreamFunc != nil {
		return m.StreamFunc(ctx, req)
	}
	ch := make(chan StreamEvent, 2)
	ch <- StreamEvent{Type: "delta", Content: "mock "}
	ch <- StreamEvent{
		Type: "done",
		Response: &Response{
			Message: Message{Role: RoleAssistant, Content: "mock stream response"},
		},
	}
	close(ch)
	return ch, nil
}

// ScriptClient replays a fixed sequence of turns, one per Stream call.
// Each turn's deltas are emitted in order, followed by a "done" event whose
// message carries the turn's tool calls. Useful for exercising the
// orchestrator's tool loop.
type ScriptClient struct {
	Turns []ScriptTurn
	Calls []Request // records every request received
	next  int
}

// ScriptTurn is one scripted model response.
type ScriptTurn struct {
	Deltas    []string
	ToolCalls []ToolCall
}

func (s *ScriptClient) Name() string { return "script" }

func (s *ScriptClient) Complete(ctx context.Context, req Request) (*Response, error) {
	ch, err := s.Stream(ctx, req)
	if err != nil {
		return nil, err
	}
	var resp *Response
	for evt := range ch {
		if evt.Type == "done" {
			resp = evt.Response
		}
	}
	return resp, nil
}

func (s *ScriptClient) Stream(ctx context.Context, req Request) (<-chan StreamEvent, error) {
	s.Calls = append(s.Calls, req)

	turn := ScriptTurn{}
	if s.next < len(s.Turns) {
		turn = s.Turns[s.next]
		s.next++
	}

	ch := make(chan StreamEvent, len(turn.Deltas)+1)
	content := ""
	for _, d := range turn.Deltas {
		content += d
		ch <- StreamEvent{Type: "delta", Content: d}
	}
	ch <- StreamEvent{
		Type: "done",
		Response: &Response{
			Message: Message{
				Role:      RoleAssistant,
				Content:   content,
				ToolCalls: turn.ToolCalls,
			},
		},
	}
	close(ch)
	return ch, nil
}
