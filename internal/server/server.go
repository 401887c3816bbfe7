// Package server hosts casino sessions over WebSocket.
//
// Each connection gets its own session. Rounds are settled synchronously when
// a request arrives; the dealer's draws and the spinning reels are then
// streamed as paced frames. Any further message from the client skips the
// running animation straight to its final frame.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/lox/casino/internal/config"
	"github.com/lox/casino/internal/pacing"
	"github.com/lox/casino/internal/randutil"
	"github.com/lox/casino/internal/session"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// Server represents the WebSocket server
type Server struct {
	cfg         *config.Config
	session     session.Config
	upgrader    websocket.Upgrader
	connections map[*Connection]bool
	logger      *log.Logger
	pacer       *pacing.Pacer
	seed        int64
	seeded      bool
	count       int64
	mu          sync.RWMutex
}

// Option configures a Server during creation.
type Option func(*Server)

// WithClock sets the clock used to pace frames
func WithClock(clock quartz.Clock) Option {
	return func(s *Server) {
		s.pacer = pacing.New(clock)
	}
}

// WithSeed makes every session and animation deterministic
func WithSeed(seed int64) Option {
	return func(s *Server) {
		s.seed = seed
		s.seeded = true
	}
}

// WithLogger sets the server logger
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new WebSocket server
func NewServer(cfg *config.Config, opts ...Option) (*Server, error) {
	sc, err := cfg.Session()
	if err != nil {
		return nil, fmt.Errorf("invalid session settings: %w", err)
	}

	s := &Server{
		cfg:     cfg,
		session: sc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
		logger:      log.New(io.Discard),
		pacer:       pacing.New(nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	if !s.seeded && cfg.Server.Seed != 0 {
		s.seed, s.seeded = cfg.Server.Seed, true
	}
	s.logger = s.logger.WithPrefix("server")
	return s, nil
}

// Handler returns the HTTP routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/machines", s.handleMachines)
	return mux
}

// Start serves until ctx is cancelled, then closes every connection and
// shuts the listener down.
func (s *Server) Start(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Server.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Starting WebSocket server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("Shutting down", "connections", s.ConnectionCount())
		s.closeConnections()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// ConnectionCount returns the number of open connections
func (s *Server) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

func (s *Server) closeConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.connections {
		_ = conn.Close() // Ignore close errors during shutdown
	}
}

// nextSources returns the session seed and frame source for a new connection
func (s *Server) nextSources() (int64, randutil.Source) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.count++
	seed := randutil.NewSeed()
	if s.seeded {
		seed = s.seed + s.count*1000
	}
	return seed, randutil.New(seed - 1)
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	seed, frames := s.nextSources()
	sess, err := session.New(s.session, session.WithSeed(seed), session.WithLogger(s.logger))
	if err != nil {
		s.logger.Error("Failed to open session", "error", err)
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	conn := NewConnection(ws, sess, s.cfg, s.pacer, frames, s.logger)

	s.mu.Lock()
	s.connections[conn] = true
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("Client connected", "session", sess.ID(), "total", total)

	conn.sendSessionState("")
	conn.Start()

	go func() {
		<-conn.Done()
		s.mu.Lock()
		delete(s.connections, conn)
		total := len(s.connections)
		s.mu.Unlock()
		s.logger.Info("Client disconnected", "session", sess.ID(), "balance", sess.Balance(), "total", total)
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK") // Ignore write errors for health check
}

// handleMachines serves the lobby catalogue
func (s *Server) handleMachines(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.session.Machines); err != nil {
		s.logger.Error("Failed to encode machines", "error", err)
	}
}
