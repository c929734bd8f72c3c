package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/tenin/internal/chat"
	"github.com/hyperjump/tenin/internal/llm"
	"github.com/hyperjump/tenin/internal/models"
	"github.com/hyperjump/tenin/internal/retrieval"
)

// Config bounds the conversational loop.
type Config struct {
	// HistorySize is the number of transcript messages included as context.
	HistorySize int `yaml:"history_size"`
	// MaxToolCalls caps tool executions per turn; extra requests are ignored.
	MaxToolCalls int `yaml:"max_tool_calls"`
	// StreamBuffer is the output channel capacity.
	StreamBuffer int `yaml:"stream_buffer"`
}

// DefaultConfig returns the default loop bounds.
func DefaultConfig() *Config {
	return &Config{
		HistorySize:  30,
		MaxToolCalls: 3,
		StreamBuffer: 64,
	}
}

// ApplyDefaults fills zero values with defaults.
func (c *Config) ApplyDefaults() {
	d := DefaultConfig()
	if c.HistorySize <= 0 {
		c.HistorySize = d.HistorySize
	}
	if c.MaxToolCalls <= 0 {
		c.MaxToolCalls = d.MaxToolCalls
	}
	if c.StreamBuffer <= 0 {
		c.StreamBuffer = d.StreamBuffer
	}
}

// Retriever is the knowledge-base collaborator the loop queries on tool
// calls. *retrieval.Engine satisfies it.
type Retriever interface {
	Retrieve(ctx context.Context, q *models.Query) (*retrieval.Result, error)
}

// Loop drives one assistant turn per Run call. Each turn owns its stream and
// in-flight history; no state is shared across turns.
type Loop struct {
	retriever Retriever
	generator llm.Generator
	store     chat.Store
	config    *Config
	logger    *zap.Logger
}

// NewLoop creates a loop with the given collaborators.
func NewLoop(retriever Retriever, generator llm.Generator, store chat.Store, config *Config, logger *zap.Logger) *Loop {
	if config == nil {
		config = DefaultConfig()
	}
	config.ApplyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{
		retriever: retriever,
		generator: generator,
		store:     store,
		config:    config,
		logger:    logger,
	}
}

// Run starts one turn in the background and returns its stream immediately.
// The stream is closed on every path. A disconnected consumer should call
// Detach on the stream; the turn still runs to completion and persists.
func (l *Loop) Run(ctx context.Context, chatID, message string) *Stream {
	stream := NewStream(l.config.StreamBuffer)
	go l.runTurn(ctx, chatID, message, stream)
	return stream
}

func (l *Loop) runTurn(ctx context.Context, chatID, message string, stream *Stream) {
	defer stream.Close()

	history, err := l.store.ReadMessages(ctx, chatID, l.config.HistorySize)
	if err != nil && !errors.Is(err, chat.ErrChatNotFound) {
		l.fail(stream, "read history", err)
		return
	}

	userMsg := models.ChatMessage{
		Role:    models.RoleUser,
		Content: message,
		Created: time.Now().Unix(),
	}
	inflight := append(history, userMsg)

	draft, err := l.generate(ctx, mainSystemPrompt, inflight, []llm.ToolDef{queryToolDef()}, stream)
	if err != nil {
		// Fatal generation failure: terminal error event, persist only the
		// user message so the question is not lost from the transcript.
		l.fail(stream, "draft generation", err)
		l.persist(ctx, chatID, []models.ChatMessage{userMsg})
		return
	}

	final := draft
	if len(draft.ToolCalls) > 0 {
		inflight = append(inflight, *draft)
		final, err = l.handleToolCalls(ctx, message, draft, inflight, stream)
		if err != nil {
			l.fail(stream, "grounded generation", err)
			l.persist(ctx, chatID, []models.ChatMessage{userMsg})
			return
		}
		final.ToolCalls = draft.ToolCalls
	}

	// Exactly the user message and the final assistant message are durable;
	// intermediate tool messages stay in-flight only.
	if err := l.persist(ctx, chatID, []models.ChatMessage{userMsg, *final}); err != nil {
		l.fail(stream, "persist transcript", err)
	}
}

// handleToolCalls executes at most MaxToolCalls requests in order. A failed
// call counts as "no result" and never aborts the turn. With at least one
// result the turn regenerates against the grounding prompt; with none it
// substitutes the fixed no-result message without re-invoking the model.
func (l *Loop) handleToolCalls(ctx context.Context, userMessage string, draft *models.ChatMessage, inflight []models.ChatMessage, stream *Stream) (*models.ChatMessage, error) {
	calls := draft.ToolCalls
	if len(calls) > l.config.MaxToolCalls {
		l.logger.Warn("tool call budget exceeded, ignoring extras",
			zap.Int("requested", len(calls)), zap.Int("budget", l.config.MaxToolCalls))
		calls = calls[:l.config.MaxToolCalls]
	}

	anyResult := false
	for _, call := range calls {
		content, ok := l.executeToolCall(ctx, call, userMessage)
		anyResult = anyResult || ok
		inflight = append(inflight, models.ChatMessage{
			Role:       models.RoleTool,
			Content:    content,
			ToolCallID: call.ID,
			Created:    time.Now().Unix(),
		})
	}

	if !anyResult {
		stream.Send(noResultMessage)
		return &models.ChatMessage{
			Role:    models.RoleAssistant,
			Content: noResultMessage,
			Created: time.Now().Unix(),
		}, nil
	}

	return l.generate(ctx, groundingSystemPrompt, inflight, nil, stream)
}

// executeToolCall runs one knowledge-base query. The bool reports whether it
// produced results; every failure mode is absorbed into a "no result" tool
// message.
func (l *Loop) executeToolCall(ctx context.Context, call models.ToolCall, userMessage string) (string, bool) {
	if call.Name != ToolName {
		l.logger.Warn("unknown tool requested", zap.String("tool", call.Name))
		return fmt.Sprintf("unknown tool: %s", call.Name), false
	}
	q, err := parseQueryArgs(call.Arguments, userMessage)
	if err != nil {
		l.logger.Warn("tool arguments rejected", zap.Error(err))
		return "the search could not be executed for this request", false
	}

	result, err := l.retriever.Retrieve(ctx, q)
	if err != nil {
		var notFound *retrieval.NotFoundError
		if errors.As(err, &notFound) {
			return notFound.UserMessage(), false
		}
		l.logger.Warn("tool call failed", zap.Error(err))
		return "the search could not be executed for this request", false
	}
	return result.Format(), true
}

// generate runs one streamed completion with the given system prompt.
func (l *Loop) generate(ctx context.Context, systemPrompt string, history []models.ChatMessage, tools []llm.ToolDef, stream *Stream) (*models.ChatMessage, error) {
	messages := make([]models.ChatMessage, 0, len(history)+1)
	messages = append(messages, models.ChatMessage{Role: models.RoleSystem, Content: systemPrompt})
	messages = append(messages, history...)
	return l.generator.Stream(ctx, messages, tools, stream.Send)
}

func (l *Loop) persist(ctx context.Context, chatID string, messages []models.ChatMessage) error {
	if exists, err := l.store.ChatExists(ctx, chatID); err == nil && !exists {
		if err := l.store.CreateChat(ctx, chatID); err != nil {
			return fmt.Errorf("create chat: %w", err)
		}
	}
	if err := l.store.AppendMessages(ctx, chatID, messages); err != nil {
		return fmt.Errorf("append messages: %w", err)
	}
	return nil
}

func (l *Loop) fail(stream *Stream, stage string, err error) {
	l.logger.Error("turn failed", zap.String("stage", stage), zap.Error(err))
	stream.Error(fmt.Sprintf("something went wrong while answering: %s", stage))
}
