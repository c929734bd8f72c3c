package chat

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hyperjump/tenin/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "chats.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCreateAndExists(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.CreateChat(ctx, "abc123"); err != nil {
		t.Fatalf("CreateChat() error = %v", err)
	}
	exists, err := store.ChatExists(ctx, "abc123")
	if err != nil {
		t.Fatalf("ChatExists() error = %v", err)
	}
	if !exists {
		t.Error("created chat should exist")
	}
	exists, err = store.ChatExists(ctx, "missing")
	if err != nil {
		t.Fatalf("ChatExists() error = %v", err)
	}
	if exists {
		t.Error("unknown chat should not exist")
	}
}

func TestAppendAndRead(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.CreateChat(ctx, "c1"); err != nil {
		t.Fatalf("CreateChat() error = %v", err)
	}
	err := store.AppendMessages(ctx, "c1", []models.ChatMessage{
		{Role: models.RoleUser, Content: "looking for a helmet"},
		{Role: models.RoleAssistant, Content: "Here are some options."},
	})
	if err != nil {
		t.Fatalf("AppendMessages() error = %v", err)
	}

	msgs, err := store.ReadMessages(ctx, "c1", 0)
	if err != nil {
		t.Fatalf("ReadMessages() error = %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != models.RoleUser || msgs[1].Role != models.RoleAssistant {
		t.Errorf("roles out of order: %s, %s", msgs[0].Role, msgs[1].Role)
	}
	if msgs[0].Created == 0 {
		t.Error("append should stamp message timestamps")
	}
}

func TestReadLastN(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.CreateChat(ctx, "c1"); err != nil {
		t.Fatalf("CreateChat() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		err := store.AppendMessages(ctx, "c1", []models.ChatMessage{
			{Role: models.RoleUser, Content: string(rune('a' + i))},
		})
		if err != nil {
			t.Fatalf("AppendMessages() error = %v", err)
		}
	}

	msgs, err := store.ReadMessages(ctx, "c1", 2)
	if err != nil {
		t.Fatalf("ReadMessages() error = %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Content != "d" || msgs[1].Content != "e" {
		t.Errorf("window = [%s, %s], want [d, e]", msgs[0].Content, msgs[1].Content)
	}
}

func TestToolCallsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.CreateChat(ctx, "c1"); err != nil {
		t.Fatalf("CreateChat() error = %v", err)
	}
	err := store.AppendMessages(ctx, "c1", []models.ChatMessage{
		{
			Role: models.RoleAssistant,
			ToolCalls: []models.ToolCall{
				{ID: "call_1", Name: "query_knowledge_base", Arguments: `{"query_input":"gloves"}`},
			},
		},
	})
	if err != nil {
		t.Fatalf("AppendMessages() error = %v", err)
	}

	msgs, err := store.ReadMessages(ctx, "c1", 0)
	if err != nil {
		t.Fatalf("ReadMessages() error = %v", err)
	}
	if len(msgs) != 1 || len(msgs[0].ToolCalls) != 1 {
		t.Fatalf("tool calls did not survive the round trip: %+v", msgs)
	}
	if msgs[0].ToolCalls[0].Name != "query_knowledge_base" {
		t.Errorf("Name = %q", msgs[0].ToolCalls[0].Name)
	}
}

func TestDeleteAndStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"c1", "c2"} {
		if err := store.CreateChat(ctx, id); err != nil {
			t.Fatalf("CreateChat(%s) error = %v", id, err)
		}
	}
	err := store.AppendMessages(ctx, "c1", []models.ChatMessage{
		{Role: models.RoleUser, Content: "hi"},
	})
	if err != nil {
		t.Fatalf("AppendMessages() error = %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Chats != 2 || stats.Messages != 1 {
		t.Errorf("Stats = %+v, want 2 chats, 1 message", stats)
	}

	if err := store.DeleteChat(ctx, "c1"); err != nil {
		t.Fatalf("DeleteChat() error = %v", err)
	}
	if _, err := store.ReadMessages(ctx, "c1", 0); !errors.Is(err, ErrChatNotFound) {
		t.Errorf("ReadMessages after delete error = %v, want ErrChatNotFound", err)
	}

	stats, err = store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Chats != 1 || stats.Messages != 0 {
		t.Errorf("Stats after delete = %+v, want 1 chat, 0 messages", stats)
	}
}

func TestAppendToUnknownChat(t *testing.T) {
	store := newTestStore(t)
	err := store.AppendMessages(context.Background(), "missing", []models.ChatMessage{
		{Role: models.RoleUser, Content: "hi"},
	})
	if !errors.Is(err, ErrChatNotFound) {
		t.Errorf("error = %v, want ErrChatNotFound", err)
	}
}
