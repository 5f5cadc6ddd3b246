// Package server provides the watch server: a small HTTP surface for
// observing a running loop. GET /state returns the persisted document as
// JSON; /events upgrades to a websocket that receives a round event after
// every committed round.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/recurhq/aot/internal/config"
	"github.com/recurhq/aot/internal/logging"
	"github.com/recurhq/aot/internal/loop"
	"github.com/recurhq/aot/internal/state"
)

const writeTimeout = 10 * time.Second

// Server serves loop state to local observers.
type Server struct {
	port  int
	store *state.Store
	log   *logging.Logger

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	clients  map[*websocket.Conn]bool
	started  bool

	upgrader websocket.Upgrader
}

// Options holds server construction options.
type Options struct {
	Port   int
	Store  *state.Store
	Logger *logging.Logger
}

// New creates a Server. The store is required; port 0 picks a free port.
func New(opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, errors.New("server: store is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.New()
	}
	return &Server{
		port:    opts.Port,
		store:   opts.Store,
		log:     logger,
		clients: make(map[*websocket.Conn]bool),
		// The watch server is a local monitoring surface.
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}, nil
}

// NewFromConfig creates a Server from a config.ServerConfig.
func NewFromConfig(cfg *config.ServerConfig, store *state.Store) (*Server, error) {
	if cfg == nil {
		cfg = config.DefaultServerConfig()
	}
	return New(Options{Port: cfg.Port, Store: store})
}

// Start runs the HTTP server until ctx is cancelled or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("server already started")
	}

	addr := fmt.Sprintf(":%d", s.port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	mux := http.NewServeMux()
	mux.HandleFunc("/state", s.handleState)
	mux.HandleFunc("/events", s.handleEvents)

	s.server = &http.Server{
		Handler:     mux,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}
	s.started = true
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		_ = s.Stop()
	}()

	err = s.server.Serve(listener)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the server and closes every websocket client.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.started || s.server == nil {
		s.mu.Unlock()
		return nil
	}
	for conn := range s.clients {
		conn.Close()
	}
	s.clients = make(map[*websocket.Conn]bool)
	server := s.server
	s.started = false
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	return nil
}

// ListenAddr returns the actual listen address, or "" before Start. Useful
// with port 0.
func (s *Server) ListenAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// handleState serves the persisted document as JSON.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	doc, err := s.store.Load()
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		s.log.Warn("failed to encode state", "error", err)
	}
}

// handleEvents upgrades to a websocket and registers the client for round
// event broadcasts. Inbound messages are discarded; the read pump exists only
// to notice disconnects.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	go func() {
		defer s.dropClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) dropClient(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
	conn.Close()
}

// Broadcast implements loop.Broadcaster: it pushes a round event to every
// connected client, dropping clients whose writes fail.
func (s *Server) Broadcast(event loop.RoundEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		s.log.Warn("failed to marshal round event", "error", err)
		return
	}

	s.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for conn := range s.clients {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			s.dropClient(conn)
		}
	}
}
