// Package web serves the assistant over HTTP for local development:
// a small chat page, the chat API the page talks to, and debug
// endpoints that dump the record collections. There is no
// authentication; bind to localhost.
package web

import (
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/DavidVart/Personal-Assistant/internal/assistant"
	"github.com/DavidVart/Personal-Assistant/internal/records"
	"github.com/DavidVart/Personal-Assistant/internal/storage"
)

// Options wires the server to the rest of the application.
type Options struct {
	Stores   *records.Stores
	Sessions storage.Store
	// NewConversation builds a fresh assistant for a new session.
	NewConversation func() *assistant.Assistant
	CalendarStatus  func() string
	Mode            string
	Model           string
}

// Server owns one assistant conversation per session_id.
type Server struct {
	stores          *records.Stores
	sessions        storage.Store
	newConversation func() *assistant.Assistant
	calendarStatus  func() string
	mode            string
	model           string
	router          *gin.Engine

	mu    sync.Mutex
	chats map[string]*assistant.Assistant
}

func NewServer(opts Options) *Server {
	router := gin.Default()

	s := &Server{
		stores:          opts.Stores,
		sessions:        opts.Sessions,
		newConversation: opts.NewConversation,
		calendarStatus:  opts.CalendarStatus,
		mode:            opts.Mode,
		model:           opts.Model,
		router:          router,
		chats:           make(map[string]*assistant.Assistant),
	}
	if s.calendarStatus == nil {
		s.calendarStatus = func() string { return "not configured" }
	}
	s.registerRoutes(router)
	return s
}

func (s *Server) registerRoutes(router *gin.Engine) {
	router.GET("/", s.handleIndex)

	api := router.Group("/api")
	{
		api.POST("/chat", s.handleChat)

		debug := api.Group("/debug")
		{
			debug.GET("/events", s.handleDebugEvents)
			debug.GET("/todos", s.handleDebugTodos)
			debug.GET("/notes", s.handleDebugNotes)
			debug.GET("/contacts", s.handleDebugContacts)
			debug.POST("/clear-events", s.handleDebugClearEvents)
			debug.GET("/sessions", s.handleDebugSessions)
			debug.GET("/calendar-status", s.handleDebugCalendarStatus)
		}
	}
}

// Run starts the HTTP server on addr.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// conversation returns the session's assistant, rebuilding it from
// persisted history when the process has restarted since the session
// began.
func (s *Server) conversation(sessionID string) *assistant.Assistant {
	s.mu.Lock()
	defer s.mu.Unlock()

	if conv, ok := s.chats[sessionID]; ok {
		return conv
	}
	conv := s.newConversation()
	if s.sessions != nil {
		if history, err := s.sessions.LoadMessages(sessionID); err == nil && len(history) > 0 {
			conv.Restore(history)
		}
	}
	s.chats[sessionID] = conv
	return conv
}
