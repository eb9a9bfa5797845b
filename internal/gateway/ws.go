package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/loamlabs/loamlabs-shop-tech-agent/internal/domain"
)

// WebSocket chat protocol. The widget's fallback transport for environments
// that buffer chunked HTTP responses (some corporate proxies do): one "chat"
// frame in, a series of "delta" frames out, closed by "done" or "error".
type wsFrame struct {
	Type         string               `json:"type"` // chat | delta | done | error
	Content      string               `json:"content,omitempty"`
	Error        string               `json:"error,omitempty"`
	Messages     []domain.ChatMessage `json:"messages,omitempty"`
	BuildContext domain.BuildContext  `json:"buildContext,omitempty"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	for {
		var frame wsFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug().Err(err).Msg("websocket read failed")
			}
			return
		}
		if frame.Type != "chat" {
			s.writeFrame(conn, wsFrame{Type: "error", Error: "expected a chat frame"})
			continue
		}
		if !s.runChatFrame(r.Context(), conn, frame) {
			return
		}
	}
}

// runChatFrame executes one turn over the socket. Returns false when the
// connection is no longer usable.
func (s *Server) runChatFrame(ctx context.Context, conn *websocket.Conn, frame wsFrame) bool {
	req := chatRequest{Messages: frame.Messages, BuildContext: frame.BuildContext}
	if len(req.Messages) == 0 {
		return s.writeFrame(conn, wsFrame{Type: "error", Error: "messages are required"})
	}
	for i := range req.Messages {
		if req.Messages[i].Role == "agent" {
			req.Messages[i].Role = domain.RoleAssistant
		}
		if !domain.ValidRole(req.Messages[i].Role) {
			return s.writeFrame(conn, wsFrame{Type: "error", Error: "invalid message role"})
		}
	}

	turnCtx, cancel := context.WithTimeout(ctx, chatTimeout)
	defer cancel()

	runReq := s.newRunRequest(req)

	wrote := false
	_, err := s.runner.Run(turnCtx, runReq, func(delta string) error {
		wrote = true
		if !s.writeFrame(conn, wsFrame{Type: "delta", Content: delta}) {
			return context.Canceled
		}
		return nil
	})
	if err != nil && !wrote {
		s.log.Error().Err(err).Msg("websocket chat turn failed")
		return s.writeFrame(conn, wsFrame{Type: "error", Error: "upstream model failure"})
	}
	return s.writeFrame(conn, wsFrame{Type: "done"})
}

func (s *Server) writeFrame(conn *websocket.Conn, frame wsFrame) bool {
	payload, err := json.Marshal(frame)
	if err != nil {
		return false
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		s.log.Debug().Err(err).Msg("websocket write failed")
		return false
	}
	return true
}
