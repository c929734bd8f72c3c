// Package cli provides terminal output helpers for the Tenin CLI.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/hyperjump/tenin/internal/chat"
	"github.com/hyperjump/tenin/internal/models"
	"github.com/hyperjump/tenin/pkg/utils"
)

// OutputFormat is the format for CLI output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseFormat validates a format flag value.
func ParseFormat(s string) (OutputFormat, error) {
	switch s {
	case "", "text":
		return OutputText, nil
	case "json":
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

// WriteTranscript writes a chat transcript to w in the given format.
func WriteTranscript(w io.Writer, chatID string, messages []models.ChatMessage, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"chat_id": chatID, "messages": messages})
	}
	fmt.Fprintf(w, "\nTranscript %s (%d messages)\n", chatID, len(messages))
	for _, m := range messages {
		ts := ""
		if m.Created > 0 {
			ts = time.Unix(m.Created, 0).Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "─────────────────────────────────────────────\n")
		fmt.Fprintf(w, "[%s] %s\n", m.Role, ts)
		if m.Content != "" {
			fmt.Fprintf(w, "%s\n", m.Content)
		}
		for _, tc := range m.ToolCalls {
			fmt.Fprintf(w, "  tool call %s: %s\n", tc.Name, utils.Truncate(tc.Arguments, 120))
		}
	}
	fmt.Fprintln(w)
	return nil
}

// WriteChatList writes the chat listing to w in the given format.
func WriteChatList(w io.Writer, chats []*chat.Info, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"chats": chats})
	}
	fmt.Fprintf(w, "\n%d chats\n", len(chats))
	for _, c := range chats {
		fmt.Fprintf(w, "  %s  %s  %d messages\n",
			c.ID, c.CreatedAt.Format("2006-01-02 15:04"), c.MessageCount)
	}
	fmt.Fprintln(w)
	return nil
}
