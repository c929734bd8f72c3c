package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/tenin/internal/chat"
)

func (s *Server) handleCreateChat(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()[:8]
	if err := s.chats.CreateChat(r.Context(), id); err != nil {
		s.logger.Error("create chat failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Debug("chat created", zap.String("chat_id", id))
	s.respondJSON(w, http.StatusCreated, map[string]string{"chat_id": id})
}

type sendMessageRequest struct {
	Message string `json:"message"`
}

// handleSendMessage runs one assistant turn and streams it back as
// server-sent events. A client disconnect detaches the consumer; the turn
// still completes and persists.
func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	exists, err := s.chats.ChatExists(r.Context(), id)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !exists {
		s.respondError(w, http.StatusNotFound, "chat not found")
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.respondError(w, http.StatusBadRequest, "message is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// The turn runs on the server's base context, not the request context:
	// disconnects detach the consumer but never abort the turn.
	stream := s.loop.Run(s.baseCtx, id, req.Message)
	clientGone := r.Context().Done()
	for {
		select {
		case ev, open := <-stream.Events():
			if !open {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if _, err := w.Write([]byte("data: " + string(payload) + "\n\n")); err != nil {
				stream.Detach()
				return
			}
			flusher.Flush()
		case <-clientGone:
			s.logger.Debug("client disconnected mid-stream", zap.String("chat_id", id))
			stream.Detach()
			return
		}
	}
}

func (s *Server) handleGetTranscript(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	messages, err := s.chats.ReadMessages(r.Context(), id, 0)
	if err != nil {
		if errors.Is(err, chat.ErrChatNotFound) {
			s.respondError(w, http.StatusNotFound, "chat not found")
			return
		}
		s.logger.Error("read transcript failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"chat_id": id, "messages": messages})
}

func (s *Server) handleListChats(w http.ResponseWriter, r *http.Request) {
	chats, err := s.chats.ListChats(r.Context())
	if err != nil {
		s.logger.Error("list chats failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if chats == nil {
		chats = []*chat.Info{}
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"chats": chats})
}

func (s *Server) handleDeleteChat(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete chat request", zap.String("chat_id", id))
	if err := s.chats.DeleteChat(r.Context(), id); err != nil {
		if errors.Is(err, chat.ErrChatNotFound) {
			s.respondError(w, http.StatusNotFound, "chat not found")
			return
		}
		s.logger.Error("delete chat failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"chat_id": id, "status": "deleted"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.chats.Stats(r.Context())
	if err != nil {
		s.logger.Error("stats failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"chats":    stats.Chats,
		"messages": stats.Messages,
		"products": s.catalog.Count(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
