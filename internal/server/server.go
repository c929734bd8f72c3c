// Package server provides the HTTP API for Tenin.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/tenin/internal/assistant"
	"github.com/hyperjump/tenin/internal/chat"
	"github.com/hyperjump/tenin/internal/config"
	"github.com/hyperjump/tenin/internal/corpus"
)

// Server is the HTTP server for the Tenin API.
type Server struct {
	loop    *assistant.Loop
	chats   chat.Store
	catalog corpus.Store
	config  *config.ServerConfig
	logger  *zap.Logger
	server  *http.Server

	// baseCtx outlives individual requests so a turn keeps running after
	// its consumer disconnects.
	baseCtx context.Context
}

// NewServer creates a server with the given dependencies.
func NewServer(
	loop *assistant.Loop,
	chats chat.Store,
	catalog corpus.Store,
	cfg *config.ServerConfig,
	logger *zap.Logger,
) *Server {
	return &Server{
		loop:    loop,
		chats:   chats,
		catalog: catalog,
		config:  cfg,
		logger:  logger,
		baseCtx: context.Background(),
	}
}

// Router builds the chi router with all routes registered.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/api/v1/chats", s.handleCreateChat)
	r.Post("/api/v1/chats/{id}", s.handleSendMessage)
	r.Get("/api/v1/chats/{id}", s.handleGetTranscript)
	r.Get("/api/v1/chats", s.handleListChats)
	r.Delete("/api/v1/chats/{id}", s.handleDeleteChat)
	r.Get("/api/v1/stats", s.handleStats)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
