package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hyperjump/tenin/internal/models"
)

// OpenAIConfig configures the chat completions client. The API key is read
// from the environment variable named by APIKeyEnv.
type OpenAIConfig struct {
	BaseURL     string
	APIKeyEnv   string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// OpenAIGenerator calls an OpenAI-compatible /chat/completions endpoint in
// streaming mode.
type OpenAIGenerator struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	client      *http.Client
}

// NewOpenAIGenerator creates a client from config, filling defaults for any
// zero fields.
func NewOpenAIGenerator(cfg OpenAIConfig) (*OpenAIGenerator, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout == 0 {
		// Streaming turns can run long.
		cfg.Timeout = 300 * time.Second
	}
	return &OpenAIGenerator{
		baseURL:     cfg.BaseURL,
		apiKey:      key,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		client:      &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type chatRequestMessage struct {
	Role       string            `json:"role"`
	Content    string            `json:"content"`
	ToolCallID string            `json:"tool_call_id,omitempty"`
	ToolCalls  []requestToolCall `json:"tool_calls,omitempty"`
}

type requestToolCall struct {
	ID       string              `json:"id"`
	Type     string              `json:"type"`
	Function requestToolFunction `json:"function"`
}

type requestToolFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type requestTool struct {
	Type     string          `json:"type"`
	Function requestToolSpec `json:"function"`
}

type requestToolSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

type chatRequest struct {
	Model       string               `json:"model"`
	Messages    []chatRequestMessage `json:"messages"`
	Tools       []requestTool        `json:"tools,omitempty"`
	Temperature float64              `json:"temperature,omitempty"`
	MaxTokens   int                  `json:"max_tokens,omitempty"`
	Stream      bool                 `json:"stream"`
}

// chatChunk is one SSE payload of a streamed completion.
type chatChunk struct {
	Choices []struct {
		Delta struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				Index    int    `json:"index"`
				ID       string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Stream runs one streamed completion and assembles the assistant message
// from the deltas. Tool call fragments arrive interleaved and are stitched
// together by index.
func (g *OpenAIGenerator) Stream(ctx context.Context, messages []models.ChatMessage, tools []ToolDef, onToken func(string)) (*models.ChatMessage, error) {
	reqBody := chatRequest{
		Model:       g.model,
		Messages:    toRequestMessages(messages),
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
		Stream:      true,
	}
	for _, t := range tools {
		reqBody.Tools = append(reqBody.Tools, requestTool{
			Type: "function",
			Function: requestToolSpec{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat completions request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("chat completions returned %s: %s", resp.Status, bytes.TrimSpace(msg))
	}

	var content strings.Builder
	calls := newToolCallAssembler()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			break
		}
		var chunk chatChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta
		if delta.Content != "" {
			content.WriteString(delta.Content)
			if onToken != nil {
				onToken(delta.Content)
			}
		}
		for _, tc := range delta.ToolCalls {
			calls.add(tc.Index, tc.ID, tc.Function.Name, tc.Function.Arguments)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stream: %w", err)
	}

	return &models.ChatMessage{
		Role:      models.RoleAssistant,
		Content:   content.String(),
		ToolCalls: calls.finish(),
		Created:   time.Now().Unix(),
	}, nil
}

// Close is a no-op for the HTTP client.
func (g *OpenAIGenerator) Close() error {
	return nil
}

func toRequestMessages(messages []models.ChatMessage) []chatRequestMessage {
	out := make([]chatRequestMessage, len(messages))
	for i, m := range messages {
		rm := chatRequestMessage{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			rm.ToolCalls = append(rm.ToolCalls, requestToolCall{
				ID:   tc.ID,
				Type: "function",
				Function: requestToolFunction{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		out[i] = rm
	}
	return out
}

// toolCallAssembler stitches streamed tool call fragments back together.
// The first fragment of a call carries its ID and name; later fragments
// append argument text.
type toolCallAssembler struct {
	order []int
	byIdx map[int]*toolCallBuild
}

type toolCallBuild struct {
	id   string
	name string
	args strings.Builder
}

func newToolCallAssembler() *toolCallAssembler {
	return &toolCallAssembler{byIdx: make(map[int]*toolCallBuild)}
}

func (a *toolCallAssembler) add(index int, id, name, args string) {
	b, ok := a.byIdx[index]
	if !ok {
		b = &toolCallBuild{}
		a.byIdx[index] = b
		a.order = append(a.order, index)
	}
	if id != "" {
		b.id = id
	}
	if name != "" {
		b.name = name
	}
	b.args.WriteString(args)
}

func (a *toolCallAssembler) finish() []models.ToolCall {
	if len(a.order) == 0 {
		return nil
	}
	out := make([]models.ToolCall, 0, len(a.order))
	for _, idx := range a.order {
		b := a.byIdx[idx]
		out = append(out, models.ToolCall{
			ID:        b.id,
			Name:      b.name,
			Arguments: b.args.String(),
		})
	}
	return out
}
