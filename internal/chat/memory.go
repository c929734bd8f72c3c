package chat

import (
	"context"
	"sync"
	"time"

	"github.com/hyperjump/tenin/internal/models"
)

// MemoryStore is an in-memory Store for the local REPL and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	order    []string
	chats    map[string]*memoryChat
}

type memoryChat struct {
	created  time.Time
	messages []models.ChatMessage
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{chats: make(map[string]*memoryChat)}
}

func (s *MemoryStore) CreateChat(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chats[id]; !ok {
		s.chats[id] = &memoryChat{created: time.Now()}
		s.order = append(s.order, id)
	}
	return nil
}

func (s *MemoryStore) ChatExists(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.chats[id]
	return ok, nil
}

func (s *MemoryStore) AppendMessages(ctx context.Context, chatID string, messages []models.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chats[chatID]
	if !ok {
		return ErrChatNotFound
	}
	now := time.Now().Unix()
	for _, m := range messages {
		m.Created = now
		c.messages = append(c.messages, m)
	}
	return nil
}

func (s *MemoryStore) ReadMessages(ctx context.Context, chatID string, lastN int) ([]models.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.chats[chatID]
	if !ok {
		return nil, ErrChatNotFound
	}
	msgs := c.messages
	if lastN > 0 && lastN < len(msgs) {
		msgs = msgs[len(msgs)-lastN:]
	}
	out := make([]models.ChatMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (s *MemoryStore) ListChats(ctx context.Context) ([]*Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Info, 0, len(s.order))
	// Newest first, matching the SQLite ordering.
	for i := len(s.order) - 1; i >= 0; i-- {
		id := s.order[i]
		c := s.chats[id]
		out = append(out, &Info{ID: id, CreatedAt: c.created, MessageCount: len(c.messages)})
	}
	return out, nil
}

func (s *MemoryStore) DeleteChat(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chats[id]; !ok {
		return ErrChatNotFound
	}
	delete(s.chats, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := &Stats{Chats: int64(len(s.chats))}
	for _, c := range s.chats {
		stats.Messages += int64(len(c.messages))
	}
	return stats, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
