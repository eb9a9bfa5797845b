// Package agent implements the tool-mediated conversation loop: system
// prompt assembly, the tool dispatcher, and the per-request orchestrator
// that drives the model's streaming completion.
package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/loamlabs/loamlabs-shop-tech-agent/internal/llm"
	"github.com/loamlabs/loamlabs-shop-tech-agent/internal/logging"
)

// ToolOutcome is the structured result of a tool invocation. Either Text is
// the payload fed back to the model, or NeedsClarification signals that the
// orchestrator should stop and ask the user for a missing field instead of
// running the tool at all.
type ToolOutcome struct {
	Text               string
	NeedsClarification bool
	Field              string // which field is missing, e.g. "position"
}

// Tool is a callable operation exposed to the model.
type Tool interface {
	Definition() llm.ToolDefinition
	Execute(ctx context.Context, args json.RawMessage) (ToolOutcome, error)
}

// Registry holds the tools available for one request. Registration order is
// preserved in Definitions so prompts stay stable.
type Registry struct {
	tools map[string]Tool
	order []string
	log   *logging.Logger
}

// NewRegistry creates a registry over the given tools.
func NewRegistry(log *logging.Logger, tools ...Tool) *Registry {
	r := &Registry{
		tools: make(map[string]Tool, len(tools)),
		log:   log.Sub("tools"),
	}
	for _, t := range tools {
		name := t.Definition().Name
		if _, dup := r.tools[name]; dup {
			continue
		}
		r.tools[name] = t
		r.order = append(r.order, name)
	}
	return r
}

// Definitions returns the tool schemas to attach to a model request.
func (r *Registry) Definitions() []llm.ToolDefinition {
	defs := make([]llm.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// Dispatch executes a model-requested tool call. Failures never escape as
// errors: unknown tools and execution faults come back as text so the
// conversation can continue.
func (r *Registry) Dispatch(ctx context.Context, call llm.ToolCall) ToolOutcome {
	tool, ok := r.tools[call.Name]
	if !ok {
		r.log.Warn().Str("tool", call.Name).Msg("unknown tool requested")
		return ToolOutcome{Text: fmt.Sprintf("Unknown tool %q.", call.Name)}
	}

	outcome, err := tool.Execute(ctx, json.RawMessage(call.Arguments))
	if err != nil {
		r.log.Warn().Err(err).Str("tool", call.Name).Msg("tool execution failed")
		return ToolOutcome{Text: fmt.Sprintf("Tool error: %v", err)}
	}
	return outcome
}
