// Package gateway exposes the chat agent over HTTP: a streaming POST /chat
// endpoint for the storefront widget, a WebSocket variant, and a health
// probe.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/loamlabs/loamlabs-shop-tech-agent/internal/agent"
	"github.com/loamlabs/loamlabs-shop-tech-agent/internal/catalog"
	"github.com/loamlabs/loamlabs-shop-tech-agent/internal/config"
	"github.com/loamlabs/loamlabs-shop-tech-agent/internal/logging"
	"github.com/loamlabs/loamlabs-shop-tech-agent/internal/spokecalc"
)

// chatTimeout bounds one full conversation turn, tool rounds included.
const chatTimeout = 2 * time.Minute

// Server is the shop tech agent's HTTP + WebSocket server.
type Server struct {
	cfg      config.Config
	log      *logging.Logger
	runner   *agent.Runner
	catalog  catalog.Client
	calc     spokecalc.Client
	upgrader websocket.Upgrader

	httpServer *http.Server
}

// New creates a server. The runner and the two upstream clients are shared
// across requests; the tool registry is built per request because it binds
// the caller's build context.
func New(cfg config.Config, log *logging.Logger, runner *agent.Runner, cat catalog.Client, calc spokecalc.Client) *Server {
	return &Server{
		cfg:     cfg,
		log:     log.Sub("gateway"),
		runner:  runner,
		catalog: cat,
		calc:    calc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     checkWebSocketOrigin(cfg.Server.AllowedOrigins),
		},
	}
}

// checkWebSocketOrigin applies the same origin policy as the CORS layer.
// Same-origin requests (no Origin header) are always allowed.
func checkWebSocketOrigin(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		return isOriginAllowed(origin, allowed)
	}
}

func resolveBindAddr(cfg config.ServerConfig) string {
	switch cfg.Bind {
	case "loopback":
		return fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	case "lan":
		return fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	case "custom":
		host := cfg.CustomBindHost
		if host == "" {
			host = "0.0.0.0"
		}
		return fmt.Sprintf("%s:%d", host, cfg.Port)
	default:
		return fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	}
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	// Catch-all for unknown routes
	mux.HandleFunc("/", handleNotFound)
}

// Handler returns the full route table wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)
	return withMiddleware(mux, s.log, s.cfg.Server.AllowedOrigins)
}

// Start runs the server until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := resolveBindAddr(s.cfg.Server)
	handler := s.Handler()

	s.httpServer = &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: 30 * time.Second,
		// No WriteTimeout: /chat streams for the length of a model turn.
		IdleTimeout: 120 * time.Second,
		BaseContext: func(l net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.log.Info().
		Str("addr", ln.Addr().String()).
		Str("bind", s.cfg.Server.Bind).
		Str("model", s.cfg.OpenAI.Model).
		Msg("server ready")

	// Shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		s.log.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
