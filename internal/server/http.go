package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/lorencia/mmoserver/internal/storage/postgres"
)

// healthTimeout bounds the database probe behind /api/health.
const healthTimeout = 2 * time.Second

// HTTPServer serves the websocket endpoint and the operational API.
type HTTPServer struct {
	logger *zap.Logger
	orch   *Orchestrator
	pool   *postgres.Pool

	srv      *http.Server
	upgrader websocket.Upgrader
}

// NewHTTPServer builds the HTTP front for the world server.
//
// Precondition: addr must be a valid listen address; orch, pool, and logger
// must be non-nil.
func NewHTTPServer(addr string, orch *Orchestrator, pool *postgres.Pool, logger *zap.Logger) *HTTPServer {
	h := &HTTPServer{
		logger: logger,
		orch:   orch,
		pool:   pool,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect from arbitrary origins; auth happens at
			// the join step, not the upgrade.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleWS)
	mux.HandleFunc("/api/health", h.handleHealth)
	mux.HandleFunc("/api/stats", h.handleStats)

	h.srv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return h
}

// Start runs the listener until Stop is called.
//
// Postcondition: Returns nil on graceful shutdown.
func (h *HTTPServer) Start() error {
	h.logger.Info("http server listening", zap.String("addr", h.srv.Addr))
	if err := h.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts the listener down.
func (h *HTTPServer) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := h.srv.Shutdown(ctx); err != nil {
		h.logger.Error("http shutdown", zap.Error(err))
	}
}

func (h *HTTPServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	client := NewClient(conn, h.orch, h.logger)
	go client.Run()
}

func (h *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := h.pool.Health(r.Context(), healthTimeout); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
		h.logger.Warn("health probe failed", zap.Error(err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}

func (h *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	stat := h.pool.Stat()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"players":        h.orch.PlayerCount(),
		"zones":          h.orch.ZoneCount(),
		"db_total_conns": stat.TotalConns(),
		"db_idle_conns":  stat.IdleConns(),
	})
}
