// Package llm provides response generation via an OpenAI-compatible chat
// completions endpoint with token streaming and tool calling.
package llm

import (
	"context"
	"encoding/json"

	"github.com/hyperjump/tenin/internal/models"
)

// ToolDef describes one tool offered to the model. Parameters is a JSON
// Schema object.
type ToolDef struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// Generator produces assistant turns from a conversation.
type Generator interface {
	// Stream sends the conversation and streams content tokens to onToken as
	// they arrive (onToken may be nil). It returns the assembled assistant
	// message, including any tool calls the model requested. tools may be
	// nil to disable tool calling for the turn.
	Stream(ctx context.Context, messages []models.ChatMessage, tools []ToolDef, onToken func(string)) (*models.ChatMessage, error)
	Close() error
}
