package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loamlabs/loamlabs-shop-tech-agent/internal/domain"
	"github.com/loamlabs/loamlabs-shop-tech-agent/internal/llm"
)

// stubTool runs a fixed function under a fixed name.
type stubTool struct {
	name string
	fn   func(ctx context.Context, args json.RawMessage) (ToolOutcome, error)
}

func (s *stubTool) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{Name: s.name, Parameters: map[string]any{"type": "object"}}
}

func (s *stubTool) Execute(ctx context.Context, args json.RawMessage) (ToolOutcome, error) {
	return s.fn(ctx, args)
}

func collect(t *testing.T, r *Runner, client *llm.ScriptClient, req RunRequest) (RunResult, string) {
	t.Helper()
	var out string
	result, err := r.Run(t.Context(), req, func(s string) error {
		out += s
		return nil
	})
	require.NoError(t, err)
	return result, out
}

func userTurn(content string) []llm.Message {
	return []llm.Message{{Role: llm.RoleUser, Content: content}}
}

func TestRunPlainText(t *testing.T) {
	client := &llm.ScriptClient{Turns: []llm.ScriptTurn{
		{Deltas: []string{"Hello ", "there."}},
	}}
	r := NewRunner(client, testLogger(), 5)

	result, out := collect(t, r, client, RunRequest{Messages: userTurn("hi")})

	assert.Equal(t, "Hello there.", out)
	assert.Equal(t, "Hello there.", result.Text)
	assert.Equal(t, 1, result.Steps)
	assert.Zero(t, result.ToolCalls)
}

func TestRunToolLoop(t *testing.T) {
	tool := &stubTool{name: "lookup_product", fn: func(ctx context.Context, args json.RawMessage) (ToolOutcome, error) {
		return ToolOutcome{Text: "Product: Hope Pro 5 Rear Hub\nStatus: IN STOCK"}, nil
	}}
	client := &llm.ScriptClient{Turns: []llm.ScriptTurn{
		{ToolCalls: []llm.ToolCall{{ID: "call_1", Name: "lookup_product", Arguments: `{"query":"Hope rear hub"}`}}},
		{Deltas: []string{"The Hope Pro 5 rear hub is in stock."}},
	}}
	r := NewRunner(client, testLogger(), 5)

	result, out := collect(t, r, client, RunRequest{
		Messages: userTurn("Is the Hope rear hub in stock?"),
		Registry: NewRegistry(testLogger(), tool),
	})

	assert.Equal(t, "The Hope Pro 5 rear hub is in stock.", out)
	assert.Equal(t, 1, result.ToolCalls)
	assert.Equal(t, 2, result.Steps)

	// Second model request carries the assistant tool-call turn plus the
	// tool result message.
	require.Len(t, client.Calls, 2)
	second := client.Calls[1].Messages
	require.Len(t, second, 3)
	assert.Equal(t, llm.RoleAssistant, second[1].Role)
	assert.Equal(t, llm.RoleTool, second[2].Role)
	assert.Equal(t, "call_1", second[2].ToolCallID)
	assert.Contains(t, second[2].Content, "IN STOCK")
}

func TestRunStepBudgetTerminates(t *testing.T) {
	tool := &stubTool{name: "lookup_product", fn: func(ctx context.Context, args json.RawMessage) (ToolOutcome, error) {
		return ToolOutcome{Text: "still looking"}, nil
	}}

	// Model that never stops asking for tools.
	turns := make([]llm.ScriptTurn, 20)
	for i := range turns {
		turns[i] = llm.ScriptTurn{ToolCalls: []llm.ToolCall{{ID: fmt.Sprintf("c%d", i), Name: "lookup_product", Arguments: "{}"}}}
	}
	client := &llm.ScriptClient{Turns: turns}
	r := NewRunner(client, testLogger(), 3)

	result, out := collect(t, r, client, RunRequest{
		Messages: userTurn("loop forever"),
		Registry: NewRegistry(testLogger(), tool),
	})

	assert.Equal(t, 4, result.Steps) // 3 tool rounds + the final forced pass
	assert.Equal(t, 3, result.ToolCalls)
	// Even with zero model text, the caller gets the last tool output.
	assert.Equal(t, "still looking", out)
}

func TestRunSilentModelFallsBackToToolResult(t *testing.T) {
	tool := &stubTool{name: "lookup_product", fn: func(ctx context.Context, args json.RawMessage) (ToolOutcome, error) {
		return ToolOutcome{Text: "Status: IN STOCK (3 available)"}, nil
	}}
	client := &llm.ScriptClient{Turns: []llm.ScriptTurn{
		{ToolCalls: []llm.ToolCall{{ID: "c1", Name: "lookup_product", Arguments: "{}"}}},
		{}, // model goes silent after the tool round
	}}
	r := NewRunner(client, testLogger(), 5)

	_, out := collect(t, r, client, RunRequest{
		Messages: userTurn("stock?"),
		Registry: NewRegistry(testLogger(), tool),
	})

	require.NotEmpty(t, out)
	assert.Contains(t, out, "IN STOCK (3 available)")
}

func TestRunSilentModelNoToolsGenericFallback(t *testing.T) {
	client := &llm.ScriptClient{Turns: []llm.ScriptTurn{{}}}
	r := NewRunner(client, testLogger(), 5)

	_, out := collect(t, r, client, RunRequest{Messages: userTurn("...")})

	assert.Equal(t, fallbackReply, out)
}

func TestRunClarificationShortCircuits(t *testing.T) {
	cat := &fakeCatalog{products: []domain.ProductRecord{hopeRearHub()}}
	lookup := NewLookupProductTool(cat, domain.BuildContext{}, 5, testLogger())

	client := &llm.ScriptClient{Turns: []llm.ScriptTurn{
		{ToolCalls: []llm.ToolCall{{ID: "c1", Name: "lookup_product", Arguments: `{"query":"Hope hub"}`}}},
	}}
	r := NewRunner(client, testLogger(), 5)

	result, out := collect(t, r, client, RunRequest{
		Messages: userTurn("Is the Hope hub in stock?"),
		Registry: NewRegistry(testLogger(), lookup),
	})

	assert.Contains(t, out, "Front or Rear?")
	// The clarification ends the turn; the model is not consulted again.
	assert.Len(t, client.Calls, 1)
	assert.Equal(t, 1, result.ToolCalls)
	assert.Empty(t, cat.queries)
}

func TestRunHopeRearHubEndToEnd(t *testing.T) {
	cat := &fakeCatalog{products: []domain.ProductRecord{hopeRearHub(), hopeFrontHub()}}
	lookup := NewLookupProductTool(cat, domain.BuildContext{}, 5, testLogger())

	client := &llm.ScriptClient{Turns: []llm.ScriptTurn{
		{ToolCalls: []llm.ToolCall{{ID: "c1", Name: "lookup_product", Arguments: `{"query":"Hope rear hub"}`}}},
		{}, // silent model: the fallback must still carry the report
	}}
	r := NewRunner(client, testLogger(), 5)

	_, out := collect(t, r, client, RunRequest{
		Messages: userTurn("Hope rear hub"),
		Registry: NewRegistry(testLogger(), lookup),
	})

	assert.Contains(t, out, "Hope Pro 5 Rear Hub")
	assert.Contains(t, out, "IN STOCK")
	assert.Contains(t, out, "32h Black: 3 available")
	assert.NotContains(t, out, "Front Hub")
	assert.NotContains(t, out, "28h Black")
}

func TestRunModelErrorBeforeText(t *testing.T) {
	client := &llm.MockClient{
		StreamFunc: func(ctx context.Context, req llm.Request) (<-chan llm.StreamEvent, error) {
			return nil, fmt.Errorf("quota exceeded")
		},
	}
	r := NewRunner(client, testLogger(), 5)

	err := func() error {
		_, err := r.Run(t.Context(), RunRequest{Messages: userTurn("hi")}, func(string) error { return nil })
		return err
	}()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestRunEmitErrorAborts(t *testing.T) {
	client := &llm.ScriptClient{Turns: []llm.ScriptTurn{
		{Deltas: []string{"a", "b", "c"}},
	}}
	r := NewRunner(client, testLogger(), 5)

	calls := 0
	_, err := r.Run(t.Context(), RunRequest{Messages: userTurn("hi")}, func(string) error {
		calls++
		if calls > 1 {
			return fmt.Errorf("client gone")
		}
		return nil
	})

	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestRunConcurrentToolCallsInOneStep(t *testing.T) {
	tool := &stubTool{name: "lookup_product", fn: func(ctx context.Context, args json.RawMessage) (ToolOutcome, error) {
		var a struct {
			Query string `json:"query"`
		}
		_ = json.Unmarshal(args, &a)
		return ToolOutcome{Text: "result for " + a.Query}, nil
	}}
	client := &llm.ScriptClient{Turns: []llm.ScriptTurn{
		{ToolCalls: []llm.ToolCall{
			{ID: "c1", Name: "lookup_product", Arguments: `{"query":"front"}`},
			{ID: "c2", Name: "lookup_product", Arguments: `{"query":"rear"}`},
		}},
		{Deltas: []string{"Both checked."}},
	}}
	r := NewRunner(client, testLogger(), 5)

	result, _ := collect(t, r, client, RunRequest{
		Messages: userTurn("front and rear?"),
		Registry: NewRegistry(testLogger(), tool),
	})

	assert.Equal(t, 2, result.ToolCalls)

	// Results land in call order regardless of execution interleaving.
	second := client.Calls[1].Messages
	require.Len(t, second, 4)
	assert.Equal(t, "result for front", second[2].Content)
	assert.Equal(t, "result for rear", second[3].Content)
}
