// Package chat provides persistent conversation transcripts.
package chat

import (
	"context"
	"errors"
	"time"

	"github.com/hyperjump/tenin/internal/models"
)

// ErrChatNotFound is returned for operations on an unknown chat ID.
var ErrChatNotFound = errors.New("chat not found")

// Info summarizes one chat for the admin listing.
type Info struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	MessageCount int       `json:"message_count"`
}

// Stats reports store-wide totals.
type Stats struct {
	Chats    int64 `json:"chats"`
	Messages int64 `json:"messages"`
}

// Store persists chats and their messages.
type Store interface {
	// CreateChat registers a new empty chat.
	CreateChat(ctx context.Context, id string) error
	// ChatExists reports whether the chat ID is known.
	ChatExists(ctx context.Context, id string) (bool, error)
	// AppendMessages appends messages to a chat in one transaction, stamping
	// each with the append time. Either all messages land or none do.
	AppendMessages(ctx context.Context, chatID string, messages []models.ChatMessage) error
	// ReadMessages returns the last lastN messages in chronological order;
	// lastN <= 0 returns the full transcript.
	ReadMessages(ctx context.Context, chatID string, lastN int) ([]models.ChatMessage, error)
	// ListChats returns all chats, newest first.
	ListChats(ctx context.Context) ([]*Info, error)
	// DeleteChat removes a chat and its messages.
	DeleteChat(ctx context.Context, id string) error
	// Stats returns store-wide totals.
	Stats(ctx context.Context) (*Stats, error)
	Close() error
}
