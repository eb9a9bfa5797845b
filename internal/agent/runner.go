package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/loamlabs/loamlabs-shop-tech-agent/internal/llm"
	"github.com/loamlabs/loamlabs-shop-tech-agent/internal/logging"
)

// defaultMaxToolSteps bounds the tool-call loop so a model that keeps
// requesting tools cannot spin forever.
const defaultMaxToolSteps = 5

// fallbackReply is sent when the model produced no text and no tool ran.
const fallbackReply = "I need a bit more detail to help with that. Which wheel or component are you asking about?"

// clarifyReplies are the deterministic questions for each clarification
// field a tool can request.
var clarifyReplies = map[string]string{
	"position": "Happy to check, one thing first: Front or Rear?",
}

// RunRequest is one conversation turn to orchestrate.
type RunRequest struct {
	System      string
	Messages    []llm.Message
	Registry    *Registry
	MaxTokens   int
	Temperature *float64
}

// RunResult reports what a run produced.
type RunResult struct {
	Text      string // everything emitted to the caller
	ToolCalls int    // tool invocations across all steps
	Steps     int    // model round-trips
}

// Runner drives one streaming conversation turn: prompt the model, execute
// any requested tool calls, feed results back, and relay text deltas to the
// caller. All state is request-scoped; a Runner is safe for concurrent use.
type Runner struct {
	client       llm.Client
	log          *logging.Logger
	maxToolSteps int
}

// NewRunner creates a runner over the given model client.
func NewRunner(client llm.Client, log *logging.Logger, maxToolSteps int) *Runner {
	if maxToolSteps <= 0 {
		maxToolSteps = defaultMaxToolSteps
	}
	return &Runner{
		client:       client,
		log:          log.Sub("runner"),
		maxToolSteps: maxToolSteps,
	}
}

// Run executes the turn, calling emit for every text chunk as it arrives.
// An emit error (caller gone) aborts the run. A model failure before any
// text was emitted is returned as an error; once streaming has started,
// failures are logged and the run ends with what was delivered.
func (r *Runner) Run(ctx context.Context, req RunRequest, emit func(string) error) (RunResult, error) {
	messages := append([]llm.Message(nil), req.Messages...)

	var result RunResult
	var lastToolText string

	emitText := func(s string) error {
		if s == "" {
			return nil
		}
		result.Text += s
		return emit(s)
	}

	for step := 0; step <= r.maxToolSteps; step++ {
		result.Steps++

		llmReq := llm.Request{
			System:      req.System,
			Messages:    messages,
			MaxTokens:   req.MaxTokens,
			Temperature: req.Temperature,
		}
		if req.Registry != nil {
			llmReq.Tools = req.Registry.Definitions()
		}

		events, err := r.client.Stream(ctx, llmReq)
		if err != nil {
			return result, fmt.Errorf("model request failed: %w", err)
		}

		final, err := r.relay(events, emitText)
		if err != nil {
			if result.Text == "" {
				return result, err
			}
			r.log.Warn().Err(err).Msg("stream failed mid-response")
			return result, nil
		}

		if final == nil || len(final.Message.ToolCalls) == 0 {
			break
		}
		if step == r.maxToolSteps {
			r.log.Warn().Int("steps", result.Steps).Msg("tool step budget exhausted")
			break
		}

		messages = append(messages, final.Message)

		outcomes := r.executeAll(ctx, req.Registry, final.Message.ToolCalls)
		result.ToolCalls += len(final.Message.ToolCalls)

		stop := false
		for i, call := range final.Message.ToolCalls {
			outcome := outcomes[i]
			if outcome.NeedsClarification {
				// Don't ask the model to relay the question; answer it
				// ourselves so the user always gets asked the same way.
				reply := clarifyReplies[outcome.Field]
				if reply == "" {
					reply = fallbackReply
				}
				if err := emitText(reply); err != nil {
					return result, err
				}
				stop = true
				break
			}
			lastToolText = outcome.Text
			messages = append(messages, llm.Message{
				Role:       llm.RoleTool,
				Content:    outcome.Text,
				ToolCallID: call.ID,
				Name:       call.Name,
			})
		}
		if stop {
			return result, nil
		}
	}

	// A model that calls tools but never verbalizes a reply would otherwise
	// leave the user with an empty response.
	if result.Text == "" {
		reply := fallbackReply
		if lastToolText != "" {
			reply = lastToolText
		}
		if err := emitText(reply); err != nil {
			return result, err
		}
	}

	return result, nil
}

// relay forwards delta events to emit and returns the terminal response.
func (r *Runner) relay(events <-chan llm.StreamEvent, emit func(string) error) (*llm.Response, error) {
	for evt := range events {
		switch evt.Type {
		case "delta":
			if err := emit(evt.Content); err != nil {
				return nil, err
			}
		case "error":
			return nil, fmt.Errorf("model stream error: %s", evt.Error)
		case "done":
			return evt.Response, nil
		}
	}
	return nil, fmt.Errorf("model stream closed without completing")
}

// executeAll dispatches the step's tool calls. Independent calls in one turn
// (say, a front search and a rear search) run concurrently; results come
// back in call order so history stays deterministic.
func (r *Runner) executeAll(ctx context.Context, registry *Registry, calls []llm.ToolCall) []ToolOutcome {
	outcomes := make([]ToolOutcome, len(calls))
	if registry == nil {
		for i := range outcomes {
			outcomes[i] = ToolOutcome{Text: "No tools available."}
		}
		return outcomes
	}

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call llm.ToolCall) {
			defer wg.Done()
			r.log.Debug().
				Str("tool", call.Name).
				Str("args", truncate(call.Arguments, 200)).
				Msg("executing tool")
			outcomes[i] = registry.Dispatch(ctx, call)
		}(i, call)
	}
	wg.Wait()
	return outcomes
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n]) + "…"
}
