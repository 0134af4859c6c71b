package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/DavidVart/Personal-Assistant/internal/chat"
	"github.com/DavidVart/Personal-Assistant/internal/dispatch"
	"github.com/DavidVart/Personal-Assistant/internal/provider"
	"github.com/DavidVart/Personal-Assistant/internal/records"
)

// scriptProvider replays canned responses and records every request.
type scriptProvider struct {
	script   []provider.ChatResponse
	err      error
	requests []provider.ChatRequest
}

func (s *scriptProvider) Chat(ctx context.Context, req provider.ChatRequest) (provider.ChatResponse, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return provider.ChatResponse{}, s.err
	}
	if len(s.script) == 0 {
		return provider.ChatResponse{Content: "ok"}, nil
	}
	resp := s.script[0]
	s.script = s.script[1:]
	return resp, nil
}

func (s *scriptProvider) Name() string               { return "script" }
func (s *scriptProvider) CurrentModel() string       { return "test" }
func (s *scriptProvider) SetModel(model string) error { return nil }

func toolCallResponse(name, args string) provider.ChatResponse {
	return provider.ChatResponse{
		FinishReason: "tool_calls",
		ToolCalls: []chat.ToolCall{{
			ID:       "call_0",
			Type:     "function",
			Function: chat.ToolCallFunction{Name: name, Arguments: args},
		}},
	}
}

func testAssistant(t *testing.T, p provider.Provider) (*Assistant, *records.Stores) {
	t.Helper()
	stores, err := records.OpenDir(t.TempDir())
	if err != nil {
		t.Fatalf("open stores: %v", err)
	}
	clock := func() time.Time { return time.Date(2024, 6, 14, 9, 0, 0, 0, time.Local) }
	reg := dispatch.Catalog(dispatch.ModeAdvanced, dispatch.Deps{Stores: stores, Now: clock})
	a := New(Options{
		Provider:     p,
		Registry:     reg,
		SystemPrompt: SystemPrompt(dispatch.ModeAdvanced, clock()),
		Now:          clock,
	})
	return a, stores
}

func TestRunInputPlainText(t *testing.T) {
	p := &scriptProvider{script: []provider.ChatResponse{{Content: "Hello! How can I help?"}}}
	a, _ := testAssistant(t, p)

	got, err := a.RunInput(context.Background(), "hi")
	if err != nil {
		t.Fatalf("RunInput: %v", err)
	}
	if got != "Hello! How can I help?" {
		t.Fatalf("reply = %q", got)
	}
	if len(p.requests) != 1 {
		t.Fatalf("provider calls = %d, want 1", len(p.requests))
	}
	if len(p.requests[0].Tools) == 0 {
		t.Fatalf("operation catalog not sent to provider")
	}
}

func TestRunInputExecutesToolCall(t *testing.T) {
	p := &scriptProvider{script: []provider.ChatResponse{
		toolCallResponse("add_todo", `{"description":"Buy groceries","priority":"high"}`),
		{Content: "Done! I added it to your list."},
	}}
	a, stores := testAssistant(t, p)

	got, err := a.RunInput(context.Background(), "remind me to buy groceries, it's urgent")
	if err != nil {
		t.Fatalf("RunInput: %v", err)
	}
	if got != "Done! I added it to your list." {
		t.Fatalf("reply = %q", got)
	}
	if stores.Todos.Len() != 1 {
		t.Fatalf("todo not stored")
	}

	// 第二次请求必须携带 tool 结果 / Second request must carry the tool result
	second := p.requests[1].Messages
	last := second[len(second)-1]
	if last.Role != "tool" || last.ToolCallID != "call_0" {
		t.Fatalf("tool result not fed back: %+v", last)
	}
	if !strings.Contains(last.Content, "Added task 'Buy groceries' with high priority") {
		t.Fatalf("tool result = %q", last.Content)
	}
}

func TestRunInputRendersOperationErrorForModel(t *testing.T) {
	p := &scriptProvider{script: []provider.ChatResponse{
		toolCallResponse("complete_todo", `{"id":99}`),
		{Content: "That task doesn't exist."},
	}}
	a, _ := testAssistant(t, p)

	if _, err := a.RunInput(context.Background(), "finish task 99"); err != nil {
		t.Fatalf("RunInput: %v", err)
	}
	second := p.requests[1].Messages
	last := second[len(second)-1]
	if last.Content != "Error: no task found with ID 99." {
		t.Fatalf("error rendering = %q", last.Content)
	}
}

func TestRunInputUnknownOperationFedBack(t *testing.T) {
	p := &scriptProvider{script: []provider.ChatResponse{
		toolCallResponse("launch_rocket", `{}`),
		{Content: "I can't do that."},
	}}
	a, _ := testAssistant(t, p)

	if _, err := a.RunInput(context.Background(), "launch a rocket"); err != nil {
		t.Fatalf("RunInput: %v", err)
	}
	second := p.requests[1].Messages
	last := second[len(second)-1]
	if last.Content != "I don't know how to do that." {
		t.Fatalf("unknown op rendering = %q", last.Content)
	}
}

func TestRunInputProviderFailure(t *testing.T) {
	p := &scriptProvider{err: errors.New("connection refused")}
	a, _ := testAssistant(t, p)

	_, err := a.RunInput(context.Background(), "hi")
	if err == nil {
		t.Fatalf("want error on provider failure")
	}
}

func TestRunInputStepLimit(t *testing.T) {
	// loopProvider 永远返回 tool call / loopProvider always returns a tool call
	a, _ := testAssistant(t, &loopProvider{})

	_, err := a.RunInput(context.Background(), "hi")
	if !errors.Is(err, ErrStepLimit) {
		t.Fatalf("err = %v, want ErrStepLimit", err)
	}
}

func TestFailureMessage(t *testing.T) {
	if got := FailureMessage(fmt.Errorf("wrapped: %w", ErrStepLimit)); got != StepLimitApology {
		t.Fatalf("step limit message = %q", got)
	}
	if got := FailureMessage(errors.New("connection refused")); got != ProviderApology {
		t.Fatalf("transport message = %q", got)
	}
}

type loopProvider struct{}

func (l *loopProvider) Chat(ctx context.Context, req provider.ChatRequest) (provider.ChatResponse, error) {
	return toolCallResponse("list_todos", `{}`), nil
}
func (l *loopProvider) Name() string                { return "loop" }
func (l *loopProvider) CurrentModel() string        { return "test" }
func (l *loopProvider) SetModel(model string) error { return nil }

func TestResetKeepsSystemPrompt(t *testing.T) {
	p := &scriptProvider{script: []provider.ChatResponse{{Content: "hello"}}}
	a, _ := testAssistant(t, p)

	if _, err := a.RunInput(context.Background(), "hi"); err != nil {
		t.Fatalf("RunInput: %v", err)
	}
	a.Reset()

	history := a.History()
	if len(history) != 1 || history[0].Role != "system" {
		t.Fatalf("history after reset = %+v", history)
	}
}

func TestTrimHistoryKeepsSystemAndRecentTurn(t *testing.T) {
	p := &scriptProvider{}
	a, _ := testAssistant(t, p)
	a.tokenBudget = 200

	for i := 0; i < 20; i++ {
		p.script = append(p.script, provider.ChatResponse{Content: strings.Repeat("word ", 50)})
	}
	for i := 0; i < 10; i++ {
		if _, err := a.RunInput(context.Background(), "tell me something long"); err != nil {
			t.Fatalf("RunInput: %v", err)
		}
	}

	history := a.History()
	if history[0].Role != "system" {
		t.Fatalf("system prompt evicted")
	}
	// 最近一轮必须保留 / The latest turn must survive
	sawUser := false
	for _, m := range history[1:] {
		if m.Role == "user" {
			sawUser = true
		}
	}
	if !sawUser {
		t.Fatalf("latest user turn evicted: %+v", history)
	}
}
