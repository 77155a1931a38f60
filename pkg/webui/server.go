// Package webui serves the embedded single-page chat client and its API.
package webui

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kodahr27/ollama-chat-app/pkg/configuration"
	"github.com/kodahr27/ollama-chat-app/pkg/history"
	"github.com/kodahr27/ollama-chat-app/pkg/llm"
	"github.com/kodahr27/ollama-chat-app/pkg/project"
	"github.com/kodahr27/ollama-chat-app/pkg/utils"
)

//go:embed static/*
var staticFiles embed.FS

// Server hosts the chat page, the REST endpoints and the chat WebSocket.
type Server struct {
	cfg       *configuration.Config
	client    *llm.Client
	store     *project.Store
	convs     *history.Store
	logger    *utils.Logger
	projectID string

	server      *http.Server
	upgrader    websocket.Upgrader
	connections sync.Map // *websocket.Conn -> connectedAt
	mu          sync.RWMutex
	running     bool
	startTime   time.Time
}

// NewServer wires the server against an Ollama client and the stores.
func NewServer(cfg *configuration.Config, client *llm.Client, store *project.Store, convs *history.Store, logger *utils.Logger) *Server {
	return &Server{
		cfg:       cfg,
		client:    client,
		store:     store,
		convs:     convs,
		logger:    logger,
		projectID: project.DefaultProject,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				return strings.Contains(origin, "localhost") || strings.Contains(origin, "127.0.0.1")
			},
		},
		startTime: time.Now(),
	}
}

// Start runs the HTTP server until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("web server is already running")
	}
	s.running = true
	s.mu.Unlock()

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/api/models", s.handleModels)
	mux.HandleFunc("/api/files", s.handleFiles)
	mux.HandleFunc("/api/file", s.handleFile)
	mux.HandleFunc("/api/apply", s.handleApply)
	mux.HandleFunc("/health", s.handleHealth)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.WebPort),
		Handler: mux,
	}

	go func() {
		s.logger.Logf("web UI listening at http://localhost:%d", s.cfg.WebPort)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Logf("web server error: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		_ = s.Shutdown()
	}()
	return nil
}

// Shutdown closes all connections and stops the server.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	s.connections.Range(func(conn, _ any) bool {
		if wsConn, ok := conn.(*websocket.Conn); ok {
			wsConn.Close()
		}
		return true
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	data, err := staticFiles.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, "index not found", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"model":  s.client.Model(),
		"uptime": time.Since(s.startTime).String(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, format string, args ...any) {
	writeJSON(w, status, map[string]string{"error": fmt.Sprintf(format, args...)})
}
