package chat

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/guideline-analyzer/backend/internal/agent"
	"github.com/guideline-analyzer/backend/internal/guideline"
	"github.com/guideline-analyzer/backend/internal/llm"
	"github.com/guideline-analyzer/backend/internal/session"
	"github.com/guideline-analyzer/backend/internal/storage/models"
)

// scriptedLLM replays canned replies and keeps every request it saw.
type scriptedLLM struct {
	replies  []openai.ChatCompletionMessage
	err      error
	requests []llm.ChatRequest
}

func (s *scriptedLLM) Model() string { return "test-model" }

func (s *scriptedLLM) Chat(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	if len(s.replies) == 0 {
		return nil, errors.New("no scripted reply left")
	}
	msg := s.replies[0]
	s.replies = s.replies[1:]
	return &llm.ChatResponse{Message: msg}, nil
}

type memoryHistory struct {
	mu   sync.Mutex
	msgs []models.ChatMessage
}

func (m *memoryHistory) InsertChatMessage(msg *models.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, *msg)
	return nil
}

func (m *memoryHistory) GetChatHistory(sessionID string, limit int) ([]models.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ChatMessage
	for _, msg := range m.msgs {
		if msg.SessionID == sessionID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func snapshot() *session.Snapshot {
	ds := guideline.NewDataset(
		[]string{guideline.ColCitationCode, guideline.ColCaseStudy, guideline.ColTitle, guideline.ColTheme, guideline.ColImpact},
		[][]string{
			{"#1D", "Shop", "Checkout flow", "Cart", "4"},
			{"#1M", "Shop", "Checkout flow", "Cart", "2"},
			{"#2A", "Bank", "Login form", "Account", "1"},
		},
	)
	return &session.Snapshot{Dataset: ds, Fingerprint: "abc123"}
}

func toolCall(name, args string) openai.ToolCall {
	return openai.ToolCall{
		ID:       "call_" + name,
		Type:     openai.ToolTypeFunction,
		Function: openai.FunctionCall{Name: name, Arguments: args},
	}
}

func TestProcessMessageDirectAnswer(t *testing.T) {
	fake := &scriptedLLM{replies: []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleAssistant, Content: "Hello there"},
	}}
	history := &memoryHistory{}
	engine := NewEngine(fake, agent.NewDispatcher(nil, 0), history)

	resp, err := engine.ProcessMessage(context.Background(), snapshot(), Request{Message: "  hi  ", SessionID: "s1"})
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}
	if resp.Answer != "Hello there" || len(resp.ToolCalls) != 0 {
		t.Errorf("response = %+v", resp)
	}
	if len(fake.requests) != 1 {
		t.Fatalf("made %d completions, want 1", len(fake.requests))
	}
	if got := fake.requests[0].Messages[0].Content; got != "hi" {
		t.Errorf("question sent = %q", got)
	}
	if len(fake.requests[0].Tools) != len(agent.Specs()) {
		t.Errorf("offered %d tools, want %d", len(fake.requests[0].Tools), len(agent.Specs()))
	}

	msgs, _ := engine.History("s1", 10)
	if len(msgs) != 1 || msgs[0].Question != "hi" || msgs[0].Fingerprint != "abc123" {
		t.Errorf("history = %+v", msgs)
	}
}

func TestProcessMessageRunsToolsThenFollowsUp(t *testing.T) {
	fake := &scriptedLLM{replies: []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleAssistant, ToolCalls: []openai.ToolCall{
			toolCall(agent.ToolOverallStatistics, ""),
			toolCall(agent.ToolSearchGuideline, `{"search_term":"login"}`),
		}},
		{Role: openai.ChatMessageRoleAssistant, Content: "There are 3 guidelines."},
	}}
	history := &memoryHistory{}
	engine := NewEngine(fake, agent.NewDispatcher(nil, 0), history)

	resp, err := engine.ProcessMessage(context.Background(), snapshot(), Request{Message: "how many?"})
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}
	if resp.Answer != "There are 3 guidelines." {
		t.Errorf("Answer = %q", resp.Answer)
	}
	if resp.SessionID == "" {
		t.Error("expected a generated session id")
	}
	if len(resp.ToolCalls) != 2 {
		t.Fatalf("ToolCalls = %+v", resp.ToolCalls)
	}
	if string(resp.ToolCalls[0].Arguments) != "{}" {
		t.Errorf("empty arguments normalised to %q", resp.ToolCalls[0].Arguments)
	}

	if len(fake.requests) != 2 {
		t.Fatalf("made %d completions, want 2", len(fake.requests))
	}
	followup := fake.requests[1]
	if len(followup.Tools) != 0 || len(followup.Messages) != 2 {
		t.Fatalf("follow-up request = %+v", followup)
	}
	bg := followup.Messages[1]
	if bg.Role != openai.ChatMessageRoleAssistant || !strings.HasPrefix(bg.Content, backgroundPrefix) {
		t.Errorf("background message = %+v", bg)
	}
	if !strings.Contains(bg.Content, `"Total Guidelines":3`) {
		t.Errorf("background lacks statistics: %q", bg.Content)
	}

	var parsed []map[string]any
	tail := strings.Split(strings.TrimPrefix(bg.Content, backgroundPrefix), "\n\n")[1]
	if err := json.Unmarshal([]byte(tail), &parsed); err != nil || len(parsed) != 1 {
		t.Fatalf("search background = %q (%v)", tail, err)
	}

	msgs := history.msgs
	if len(msgs) != 1 || len(msgs[0].ToolCalls) != 2 || msgs[0].ToolCalls[0] != agent.ToolOverallStatistics {
		t.Errorf("history = %+v", msgs)
	}
}

func TestProcessMessageWithoutDataset(t *testing.T) {
	fake := &scriptedLLM{replies: []openai.ChatCompletionMessage{
		{ToolCalls: []openai.ToolCall{toolCall(agent.ToolDatasetInfo, "{}")}},
		{Content: "Please upload a file first."},
	}}
	engine := NewEngine(fake, agent.NewDispatcher(nil, 0), nil)

	resp, err := engine.ProcessMessage(context.Background(), nil, Request{Message: "what's loaded?"})
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}
	if msg, isErr := resp.ToolCalls[0].Result.Err(); !isErr || msg != agent.ErrNoDataset.Error() {
		t.Errorf("tool result = %+v", resp.ToolCalls[0].Result)
	}
}

func TestProcessMessageErrors(t *testing.T) {
	engine := NewEngine(&scriptedLLM{}, agent.NewDispatcher(nil, 0), nil)
	if _, err := engine.ProcessMessage(context.Background(), nil, Request{Message: "   "}); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("blank message error = %v", err)
	}

	boom := errors.New("upstream down")
	engine = NewEngine(&scriptedLLM{err: boom}, agent.NewDispatcher(nil, 0), nil)
	if _, err := engine.ProcessMessage(context.Background(), nil, Request{Message: "hi"}); !errors.Is(err, boom) {
		t.Errorf("completion error = %v", err)
	}
}
