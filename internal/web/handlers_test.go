package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DavidVart/Personal-Assistant/internal/assistant"
	"github.com/DavidVart/Personal-Assistant/internal/chat"
	"github.com/DavidVart/Personal-Assistant/internal/dispatch"
	"github.com/DavidVart/Personal-Assistant/internal/provider"
	"github.com/DavidVart/Personal-Assistant/internal/records"
	"github.com/DavidVart/Personal-Assistant/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// scriptProvider replays canned responses, one per Chat call.
type scriptProvider struct {
	script []provider.ChatResponse
	err    error
}

func (s *scriptProvider) Chat(ctx context.Context, req provider.ChatRequest) (provider.ChatResponse, error) {
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

func (s *scriptProvider) Name() string                { return "script" }
func (s *scriptProvider) CurrentModel() string        { return "test" }
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

func newTestServer(t *testing.T, p provider.Provider) (*Server, *records.Stores) {
	t.Helper()
	stores, err := records.OpenDir(t.TempDir())
	if err != nil {
		t.Fatalf("open stores: %v", err)
	}
	sessions, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("open session store: %v", err)
	}
	t.Cleanup(func() { sessions.Close() })

	clock := func() time.Time { return time.Date(2024, 6, 14, 9, 0, 0, 0, time.Local) }
	srv := NewServer(Options{
		Stores:   stores,
		Sessions: sessions,
		NewConversation: func() *assistant.Assistant {
			reg := dispatch.Catalog(dispatch.ModeAdvanced, dispatch.Deps{Stores: stores, Now: clock})
			return assistant.New(assistant.Options{
				Provider:     p,
				Registry:     reg,
				SystemPrompt: assistant.SystemPrompt(dispatch.ModeAdvanced, clock()),
				Now:          clock,
			})
		},
		Mode:  "advanced",
		Model: "test",
	})
	return srv, stores
}

func postChat(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v\n%s", err, w.Body.String())
	}
	return out
}

func TestChatRoundTrip(t *testing.T) {
	p := &scriptProvider{script: []provider.ChatResponse{
		toolCallResponse("add_todo", `{"description":"Buy groceries","priority":"high"}`),
		{Content: "Added! Anything else?"},
	}}
	srv, stores := newTestServer(t, p)

	w := postChat(t, srv, `{"message":"remind me to buy groceries, it's urgent"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	resp := decodeJSON(t, w)
	if resp["response"] != "Added! Anything else?" {
		t.Fatalf("response = %q", resp["response"])
	}
	if resp["session_id"] == "" || resp["session_id"] == nil {
		t.Fatalf("missing session_id: %v", resp)
	}
	if stores.Todos.Len() != 1 {
		t.Fatalf("todo not stored")
	}
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	srv, _ := newTestServer(t, &scriptProvider{})

	w := postChat(t, srv, `{"message":"   "}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decodeJSON(t, w)
	if resp["error"] != "message is required" {
		t.Fatalf("error = %q", resp["error"])
	}
}

func TestChatRejectsInvalidJSON(t *testing.T) {
	srv, _ := newTestServer(t, &scriptProvider{})

	w := postChat(t, srv, `{not json`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestChatReusesSession(t *testing.T) {
	p := &scriptProvider{script: []provider.ChatResponse{
		{Content: "Hi there!"},
		{Content: "Still here."},
	}}
	srv, _ := newTestServer(t, p)

	first := decodeJSON(t, postChat(t, srv, `{"message":"hello"}`))
	sessionID, _ := first["session_id"].(string)
	if sessionID == "" {
		t.Fatalf("no session_id in first response")
	}

	second := decodeJSON(t, postChat(t, srv, `{"message":"are you there?","session_id":"`+sessionID+`"}`))
	if second["session_id"] != sessionID {
		t.Fatalf("session_id changed: %v -> %v", sessionID, second["session_id"])
	}

	conv := srv.conversation(sessionID)
	history := conv.History()
	// system + 2 user turns + 2 replies
	if len(history) != 5 {
		t.Fatalf("history length = %d, want 5", len(history))
	}
}

func TestChatPersistsHistory(t *testing.T) {
	p := &scriptProvider{script: []provider.ChatResponse{{Content: "Hi!"}}}
	srv, _ := newTestServer(t, p)

	resp := decodeJSON(t, postChat(t, srv, `{"message":"hello"}`))
	sessionID, _ := resp["session_id"].(string)

	saved, err := srv.sessions.LoadMessages(sessionID)
	if err != nil {
		t.Fatalf("LoadMessages: %v", err)
	}
	if len(saved) != 3 {
		t.Fatalf("saved messages = %d, want 3", len(saved))
	}
	if saved[len(saved)-1].Content != "Hi!" {
		t.Fatalf("last saved message = %q", saved[len(saved)-1].Content)
	}

	meta, err := srv.sessions.LoadSession(sessionID)
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if meta.Title != "hello" {
		t.Fatalf("session title = %q", meta.Title)
	}
}

func TestChatAcceptsClientMintedSession(t *testing.T) {
	p := &scriptProvider{script: []provider.ChatResponse{{Content: "Hi!"}}}
	srv, _ := newTestServer(t, p)

	w := postChat(t, srv, `{"message":"hello","session_id":"sess_client_123"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decodeJSON(t, w)
	if resp["session_id"] != "sess_client_123" {
		t.Fatalf("session_id = %v", resp["session_id"])
	}

	// The unknown ID must get a sessions row so history persists.
	meta, err := srv.sessions.LoadSession("sess_client_123")
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if meta.Title != "hello" {
		t.Fatalf("session title = %q", meta.Title)
	}
	saved, err := srv.sessions.LoadMessages("sess_client_123")
	if err != nil {
		t.Fatalf("LoadMessages: %v", err)
	}
	if len(saved) != 3 {
		t.Fatalf("saved messages = %d, want 3", len(saved))
	}
}

func TestChatProviderFailureApologizes(t *testing.T) {
	p := &scriptProvider{err: context.DeadlineExceeded}
	srv, _ := newTestServer(t, p)

	w := postChat(t, srv, `{"message":"hello"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decodeJSON(t, w)
	if resp["response"] != assistant.ProviderApology {
		t.Fatalf("response = %q", resp["response"])
	}
}

// loopProvider always answers with a tool call, so the turn never
// settles on plain text.
type loopProvider struct{}

func (loopProvider) Chat(ctx context.Context, req provider.ChatRequest) (provider.ChatResponse, error) {
	return toolCallResponse("list_todos", `{}`), nil
}
func (loopProvider) Name() string                { return "loop" }
func (loopProvider) CurrentModel() string        { return "test" }
func (loopProvider) SetModel(model string) error { return nil }

func TestChatStepLimitGetsItsOwnMessage(t *testing.T) {
	srv, _ := newTestServer(t, loopProvider{})

	w := postChat(t, srv, `{"message":"hello"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decodeJSON(t, w)
	if resp["response"] != assistant.StepLimitApology {
		t.Fatalf("response = %q", resp["response"])
	}
}

func TestIndexServesChatPage(t *testing.T) {
	srv, _ := newTestServer(t, &scriptProvider{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type = %q", ct)
	}
	if !strings.Contains(w.Body.String(), "/api/chat") {
		t.Fatalf("page does not reference the chat API")
	}
}

func TestDebugEndpoints(t *testing.T) {
	srv, stores := newTestServer(t, &scriptProvider{})
	if _, err := stores.Events.Create(records.Event{
		Title: "Standup",
		Start: time.Date(2024, 6, 17, 9, 30, 0, 0, time.Local),
		End:   time.Date(2024, 6, 17, 9, 45, 0, 0, time.Local),
	}); err != nil {
		t.Fatalf("create event: %v", err)
	}
	if _, err := stores.Todos.Create(records.Todo{Description: "Water plants", Priority: "low"}); err != nil {
		t.Fatalf("create todo: %v", err)
	}

	cases := []struct {
		path  string
		field string
		count float64
	}{
		{"/api/debug/events", "events", 1},
		{"/api/debug/todos", "todos", 1},
		{"/api/debug/notes", "notes", 0},
		{"/api/debug/contacts", "contacts", 0},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		w := httptest.NewRecorder()
		srv.router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", tc.path, w.Code)
		}
		resp := decodeJSON(t, w)
		if resp["count"] != tc.count {
			t.Fatalf("%s: count = %v, want %v", tc.path, resp["count"], tc.count)
		}
		if _, ok := resp[tc.field]; !ok {
			t.Fatalf("%s: missing %q field", tc.path, tc.field)
		}
	}
}

func TestDebugClearEvents(t *testing.T) {
	srv, stores := newTestServer(t, &scriptProvider{})
	if _, err := stores.Events.Create(records.Event{
		Title: "Standup",
		Start: time.Date(2024, 6, 17, 9, 30, 0, 0, time.Local),
		End:   time.Date(2024, 6, 17, 9, 45, 0, 0, time.Local),
	}); err != nil {
		t.Fatalf("create event: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/debug/clear-events", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if stores.Events.Len() != 0 {
		t.Fatalf("events remain after clear: %d", stores.Events.Len())
	}
}

func TestDebugCalendarStatusDefault(t *testing.T) {
	srv, _ := newTestServer(t, &scriptProvider{})

	req := httptest.NewRequest(http.MethodGet, "/api/debug/calendar-status", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	resp := decodeJSON(t, w)
	if resp["status"] != "not configured" {
		t.Fatalf("status = %q", resp["status"])
	}
}

func TestDebugSessionsListsCreated(t *testing.T) {
	p := &scriptProvider{script: []provider.ChatResponse{{Content: "Hi!"}}}
	srv, _ := newTestServer(t, p)
	postChat(t, srv, `{"message":"hello"}`)

	req := httptest.NewRequest(http.MethodGet, "/api/debug/sessions", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	resp := decodeJSON(t, w)
	if resp["count"] != float64(1) {
		t.Fatalf("session count = %v, want 1", resp["count"])
	}
}
