package chat

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/tenin/internal/models"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes
// the schema. Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS chats (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		chat_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		tool_call_id TEXT,
		tool_calls TEXT,
		created_at TIMESTAMP NOT NULL,
		FOREIGN KEY (chat_id) REFERENCES chats(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_messages_chat_id ON messages(chat_id, id);
	`
	_, err := db.Exec(schema)
	return err
}

// CreateChat registers a new empty chat.
func (s *SQLiteStore) CreateChat(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO chats (id) VALUES (?)`, id)
	if err != nil {
		return fmt.Errorf("create chat: %w", err)
	}
	return nil
}

// ChatExists reports whether the chat ID is known.
func (s *SQLiteStore) ChatExists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM chats WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// AppendMessages appends messages in one transaction with a shared timestamp.
func (s *SQLiteStore) AppendMessages(ctx context.Context, chatID string, messages []models.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}
	exists, err := s.ChatExists(ctx, chatID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrChatNotFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO messages (chat_id, role, content, tool_call_id, tool_calls, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, m := range messages {
		var toolCallsJSON sql.NullString
		if len(m.ToolCalls) > 0 {
			b, marshalErr := json.Marshal(m.ToolCalls)
			if marshalErr != nil {
				return fmt.Errorf("marshal tool calls: %w", marshalErr)
			}
			toolCallsJSON = sql.NullString{String: string(b), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, chatID, m.Role, m.Content, nullable(m.ToolCallID), toolCallsJSON, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ReadMessages returns the last lastN messages in chronological order.
func (s *SQLiteStore) ReadMessages(ctx context.Context, chatID string, lastN int) ([]models.ChatMessage, error) {
	exists, err := s.ChatExists(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrChatNotFound
	}

	query := `SELECT role, content, tool_call_id, tool_calls, created_at
		 FROM messages WHERE chat_id = ? ORDER BY id`
	args := []any{chatID}
	if lastN > 0 {
		// Take the newest N, then flip back to chronological order.
		query = `SELECT role, content, tool_call_id, tool_calls, created_at FROM (
			SELECT id, role, content, tool_call_id, tool_calls, created_at
			FROM messages WHERE chat_id = ? ORDER BY id DESC LIMIT ?
		) ORDER BY id`
		args = append(args, lastN)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		var toolCallID, toolCallsJSON sql.NullString
		var created time.Time
		if err := rows.Scan(&m.Role, &m.Content, &toolCallID, &toolCallsJSON, &created); err != nil {
			return nil, err
		}
		m.ToolCallID = toolCallID.String
		m.Created = created.Unix()
		if toolCallsJSON.Valid && toolCallsJSON.String != "" {
			if err := json.Unmarshal([]byte(toolCallsJSON.String), &m.ToolCalls); err != nil {
				return nil, fmt.Errorf("unmarshal tool calls: %w", err)
			}
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// ListChats returns all chats, newest first.
func (s *SQLiteStore) ListChats(ctx context.Context) ([]*Info, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.created_at, COUNT(m.id)
		 FROM chats c LEFT JOIN messages m ON m.chat_id = c.id
		 GROUP BY c.id ORDER BY c.created_at DESC, c.id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []*Info
	for rows.Next() {
		var info Info
		if err := rows.Scan(&info.ID, &info.CreatedAt, &info.MessageCount); err != nil {
			return nil, err
		}
		chats = append(chats, &info)
	}
	return chats, rows.Err()
}

// DeleteChat removes a chat and its messages.
func (s *SQLiteStore) DeleteChat(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM chats WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrChatNotFound
	}
	return nil
}

// Stats returns store-wide totals.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chats`).Scan(&stats.Chats); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&stats.Messages); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
