// Package hostapi is the loopback HTTP surface in front of the task bridge.
// Request handling threads never touch host state directly: every operation
// is submitted through the bridge and executed on the host goroutine.
package hostapi

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/draftsmith/forgebridge/kernel/bridge"
	"github.com/draftsmith/forgebridge/kernel/tool"
)

// TokenHeader carries the shared secret on every request.
const TokenHeader = "X-Token"

// StateToolName is the registry tool GET /state submits through the bridge.
const StateToolName = "get_state"

// ServerConfig configures a listener.
type ServerConfig struct {
	Addr     string
	Token    string
	Registry *tool.Registry
	Bridge   *bridge.Bridge
	Logger   *slog.Logger
}

// Server authenticates requests and translates them into bridge submissions.
type Server struct {
	cfg    ServerConfig
	logger *slog.Logger
	http   *http.Server
}

// NewServer validates the configuration and builds the listener.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("hostapi: token is required")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("hostapi: registry is nil")
	}
	if cfg.Bridge == nil {
		return nil, fmt.Errorf("hostapi: bridge is nil")
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:18080"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{cfg: cfg, logger: logger}
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Handler returns the full route table wrapped in authentication.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", s.handlePing)
	mux.HandleFunc("/state", s.handleState)
	mux.HandleFunc("/tool", s.handleTool)
	mux.HandleFunc("/", s.handleNotFound)
	return s.authenticate(mux)
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("hostapi: listen %s: %w", s.cfg.Addr, err)
	}
	s.logger.Info("listener started", "addr", ln.Addr().String())

	errc := make(chan error, 1)
	go func() { errc <- s.http.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("hostapi: shutdown: %w", err)
		}
		return nil
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("hostapi: serve: %w", err)
	}
}

// authenticate rejects a bad shared secret before any routing, unknown
// routes included.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := []byte(r.Header.Get(TokenHeader))
		want := []byte(s.cfg.Token)
		if subtle.ConstantTimeCompare(got, want) != 1 {
			s.logger.Warn("unauthorized request", "path", r.URL.Path, "remote", r.RemoteAddr)
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

type errorBody struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

type unknownToolBody struct {
	OK        bool     `json:"ok"`
	Error     string   `json:"error"`
	Available []string `json:"available"`
}

type toolRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args"`
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.handleNotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, bridge.Ok(map[string]any{"message": "pong"}))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.handleNotFound(w, r)
		return
	}
	t, err := s.cfg.Registry.Lookup(StateToolName)
	if err != nil {
		writeJSON(w, http.StatusOK, bridge.Failed(err.Error()))
		return
	}
	out := s.submit(r.Context(), t, nil)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTool(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.handleNotFound(w, r)
		return
	}
	var req toolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json"})
		return
	}

	t, err := s.cfg.Registry.Lookup(req.Tool)
	if err != nil {
		var unknown *tool.UnknownToolError
		if errors.As(err, &unknown) {
			// Rejected before the bridge: no task is created.
			writeJSON(w, http.StatusOK, unknownToolBody{
				Error:     fmt.Sprintf("Unknown tool '%s'.", req.Tool),
				Available: unknown.Available,
			})
			return
		}
		writeJSON(w, http.StatusOK, bridge.Failed(err.Error()))
		return
	}

	out := s.submit(r.Context(), t, req.Args)
	s.logger.Debug("tool dispatched", "tool", req.Tool, "ok", out.OK)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleNotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
}

func (s *Server) submit(ctx context.Context, t tool.Tool, args map[string]any) bridge.Outcome {
	if args == nil {
		args = map[string]any{}
	}
	return s.cfg.Bridge.Submit(ctx, func(payload map[string]any) (map[string]any, error) {
		return t.Run(ctx, payload)
	}, args)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
