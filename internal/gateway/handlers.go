package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/loamlabs/loamlabs-shop-tech-agent/internal/agent"
	"github.com/loamlabs/loamlabs-shop-tech-agent/internal/domain"
	"github.com/loamlabs/loamlabs-shop-tech-agent/internal/llm"
)

// chatRequest is the body the storefront widget posts. IsAdmin is part of
// the widget's contract but carries no server-side behavior yet; it is
// accepted so staff sessions don't fail validation.
type chatRequest struct {
	Messages     []domain.ChatMessage `json:"messages"`
	BuildContext domain.BuildContext  `json:"buildContext"`
	IsAdmin      bool                 `json:"isAdmin"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":   "Online",
		"provider": s.runnerName(),
	})
}

func (s *Server) runnerName() string {
	return s.cfg.OpenAI.Model
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(map[string]string{
		"error": "not found",
		"path":  r.URL.Path,
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// handleChat runs one conversation turn and streams the reply as plain text.
// Input errors come back as 400 before anything upstream is called; a model
// failure before the first byte comes back as 502 so the widget can show a
// retry state. Once streaming has begun the status is already committed.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	req, err := parseChatRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), chatTimeout)
	defer cancel()

	runReq := s.newRunRequest(req)

	sw := newStreamWriter(w, streamWriterConfig{})
	wroteHeader := false

	result, runErr := s.runner.Run(ctx, runReq, func(delta string) error {
		if !wroteHeader {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Header().Set("Cache-Control", "no-cache")
			w.WriteHeader(http.StatusOK)
			wroteHeader = true
		}
		return sw.OnDelta(delta)
	})

	if runErr != nil && !sw.Wrote() && !wroteHeader {
		s.log.Error().Err(runErr).Msg("chat turn failed")
		writeError(w, http.StatusBadGateway, "upstream model failure")
		return
	}
	if err := sw.Close(); err != nil {
		s.log.Debug().Err(err).Msg("client went away mid-stream")
		return
	}

	s.log.Info().
		Int("messages", len(req.Messages)).
		Int("toolCalls", result.ToolCalls).
		Int("steps", result.Steps).
		Int("bytes", len(result.Text)).
		Msg("chat turn complete")
}

// newRunRequest assembles the per-request prompt, history and toolset. The
// tool registry is rebuilt every request because it binds the build context.
func (s *Server) newRunRequest(req chatRequest) agent.RunRequest {
	registry := agent.NewRegistry(s.log,
		agent.NewLookupProductTool(s.catalog, req.BuildContext, s.cfg.Shop.BuildDays, s.log),
		agent.NewSpokeLengthTool(s.calc, s.log),
	)
	return agent.RunRequest{
		System:      agent.SystemPrompt(req.BuildContext, s.cfg.Shop.BuildDays),
		Messages:    toLLMMessages(req.Messages),
		Registry:    registry,
		MaxTokens:   s.cfg.OpenAI.MaxTokens,
		Temperature: s.cfg.OpenAI.Temperature,
	}
}

func parseChatRequest(r *http.Request) (chatRequest, error) {
	var req chatRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		return req, fmt.Errorf("malformed request body: %v", err)
	}
	if len(req.Messages) == 0 {
		return req, fmt.Errorf("messages are required")
	}
	for i := range req.Messages {
		// The widget historically labels assistant turns "agent".
		if req.Messages[i].Role == "agent" {
			req.Messages[i].Role = domain.RoleAssistant
		}
		if !domain.ValidRole(req.Messages[i].Role) {
			return req, fmt.Errorf("message %d has invalid role %q", i, req.Messages[i].Role)
		}
	}
	return req, nil
}

func toLLMMessages(messages []domain.ChatMessage) []llm.Message {
	out := make([]llm.Message, 0, len(messages))
	for _, m := range messages {
		out = append(out, llm.Message{
			Role:       string(m.Role),
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
			Name:       m.Name,
		})
	}
	return out
}
