package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/guideline-analyzer/backend/internal/agent"
	"github.com/guideline-analyzer/backend/internal/guideline"
	"github.com/guideline-analyzer/backend/internal/llm"
	"github.com/guideline-analyzer/backend/internal/metrics"
	"github.com/guideline-analyzer/backend/internal/session"
	"github.com/guideline-analyzer/backend/internal/storage/models"
	"github.com/guideline-analyzer/backend/pkg/logger"
)

var ErrEmptyMessage = errors.New("message is required")

const backgroundPrefix = "Here is some background information:\n\n"

// Completer is the language-model surface the engine needs.
type Completer interface {
	Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error)
	Model() string
}

// HistoryStore persists exchanges. Engine works without one.
type HistoryStore interface {
	InsertChatMessage(m *models.ChatMessage) error
	GetChatHistory(sessionID string, limit int) ([]models.ChatMessage, error)
}

type Engine struct {
	llm        Completer
	dispatcher *agent.Dispatcher
	history    HistoryStore
	tools      []openai.Tool
}

type Request struct {
	Message   string
	SessionID string
}

type ToolInvocation struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
	Result    agent.Result    `json:"result"`
}

type Response struct {
	ID        string           `json:"id"`
	SessionID string           `json:"session_id"`
	Answer    string           `json:"answer"`
	ToolCalls []ToolInvocation `json:"tool_calls,omitempty"`
	LatencyMS int              `json:"latency_ms"`
}

func NewEngine(completer Completer, dispatcher *agent.Dispatcher, history HistoryStore) *Engine {
	return &Engine{
		llm:        completer,
		dispatcher: dispatcher,
		history:    history,
		tools:      agent.OpenAITools(),
	}
}

// ProcessMessage answers one user message. When the model asks for tools,
// each call runs through the dispatch table and a single follow-up
// completion is made with the joined results as background. snap may be nil,
// in which case tool calls answer with a no-dataset error record.
func (e *Engine) ProcessMessage(ctx context.Context, snap *session.Snapshot, req Request) (*Response, error) {
	start := time.Now()
	question := strings.TrimSpace(req.Message)
	if question == "" {
		return nil, ErrEmptyMessage
	}
	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}
	messageID := uuid.New().String()

	logger.Info("Processing chat message",
		zap.String("message_id", messageID),
		zap.String("session_id", req.SessionID),
	)

	userMsg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: question}

	first, err := e.llm.Chat(ctx, llm.ChatRequest{
		Messages: []openai.ChatCompletionMessage{userMsg},
		Tools:    e.tools,
	})
	if err != nil {
		metrics.ChatRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to get completion: %w", err)
	}

	answer := first.Message.Content
	var invocations []ToolInvocation

	if len(first.Message.ToolCalls) > 0 {
		invocations = e.runTools(ctx, snap, first.Message.ToolCalls)

		followup, err := e.llm.Chat(ctx, llm.ChatRequest{
			Messages: []openai.ChatCompletionMessage{
				userMsg,
				{Role: openai.ChatMessageRoleAssistant, Content: backgroundPrefix + background(invocations)},
			},
		})
		if err != nil {
			metrics.ChatRequests.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("failed to get follow-up completion: %w", err)
		}
		answer = followup.Message.Content
	}

	latency := int(time.Since(start).Milliseconds())
	metrics.ChatRequests.WithLabelValues("success").Inc()
	metrics.ChatDuration.Observe(time.Since(start).Seconds())

	resp := &Response{
		ID:        messageID,
		SessionID: req.SessionID,
		Answer:    answer,
		ToolCalls: invocations,
		LatencyMS: latency,
	}
	e.record(snap, question, resp)

	logger.Info("Chat message processed",
		zap.String("message_id", messageID),
		zap.Int("tool_calls", len(invocations)),
		zap.Int("latency_ms", latency),
	)
	return resp, nil
}

// History returns up to limit past exchanges for sessionID, oldest first.
func (e *Engine) History(sessionID string, limit int) ([]models.ChatMessage, error) {
	if e.history == nil {
		return nil, nil
	}
	return e.history.GetChatHistory(sessionID, limit)
}

func (e *Engine) runTools(ctx context.Context, snap *session.Snapshot, calls []openai.ToolCall) []ToolInvocation {
	var (
		ds          = snapshotDataset(snap)
		fingerprint string
	)
	if snap != nil {
		fingerprint = snap.Fingerprint
	}

	out := make([]ToolInvocation, 0, len(calls))
	for _, call := range calls {
		args := json.RawMessage(call.Function.Arguments)
		if len(strings.TrimSpace(call.Function.Arguments)) == 0 {
			args = json.RawMessage("{}")
		}
		result := e.dispatcher.Call(ctx, ds, fingerprint, call.Function.Name, args)
		if msg, isErr := result.Err(); isErr {
			logger.Warn("Tool call returned an error record",
				zap.String("tool", call.Function.Name),
				zap.String("error", msg),
			)
		}
		out = append(out, ToolInvocation{Name: call.Function.Name, Arguments: args, Result: result})
	}
	return out
}

func (e *Engine) record(snap *session.Snapshot, question string, resp *Response) {
	if e.history == nil {
		return
	}
	names := make([]string, 0, len(resp.ToolCalls))
	for _, inv := range resp.ToolCalls {
		names = append(names, inv.Name)
	}
	msg := &models.ChatMessage{
		ID:        resp.ID,
		SessionID: resp.SessionID,
		Question:  question,
		Answer:    resp.Answer,
		ToolCalls: names,
		LatencyMS: resp.LatencyMS,
		CreatedAt: time.Now(),
	}
	if snap != nil {
		msg.Fingerprint = snap.Fingerprint
	}
	if err := e.history.InsertChatMessage(msg); err != nil {
		logger.Warn("Failed to record chat message", zap.String("message_id", resp.ID), zap.Error(err))
	}
}

func background(invocations []ToolInvocation) string {
	parts := make([]string, 0, len(invocations))
	for _, inv := range invocations {
		body, err := json.Marshal(inv.Result)
		if err != nil {
			body = []byte(fmt.Sprintf(`[{"Error":%q}]`, err.Error()))
		}
		parts = append(parts, string(body))
	}
	return strings.Join(parts, "\n\n")
}

func snapshotDataset(snap *session.Snapshot) *guideline.Dataset {
	if snap == nil {
		return nil
	}
	return snap.Dataset
}
