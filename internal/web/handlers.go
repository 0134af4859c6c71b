package web

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/DavidVart/Personal-Assistant/internal/assistant"
	"github.com/DavidVart/Personal-Assistant/internal/storage"
)

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

func (s *Server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(chatPage))
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = storage.NewSessionID()
	}
	// Client-minted IDs (or IDs that outlived the database) need a
	// sessions row too, or the messages foreign key rejects every save.
	s.ensureSession(sessionID, req.Message)

	conv := s.conversation(sessionID)
	reply, err := conv.RunInput(c.Request.Context(), req.Message)
	if err != nil {
		log.Printf("chat %s: %v", sessionID, err)
		c.JSON(http.StatusOK, gin.H{
			"response":   assistant.FailureMessage(err),
			"session_id": sessionID,
		})
		return
	}

	if s.sessions != nil {
		if err := s.sessions.SaveMessages(sessionID, conv.History()); err != nil {
			log.Printf("save session %s: %v", sessionID, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"response":   reply,
		"session_id": sessionID,
	})
}

// ensureSession creates the sessions row if the ID is not on record
// yet, titling it after the first message.
func (s *Server) ensureSession(sessionID, firstMessage string) {
	if s.sessions == nil {
		return
	}
	if _, err := s.sessions.LoadSession(sessionID); err == nil {
		return
	}
	if err := s.sessions.CreateSession(storage.SessionMeta{
		ID:    sessionID,
		Title: sessionTitle(firstMessage),
		Mode:  s.mode,
		Model: s.model,
	}); err != nil {
		log.Printf("create session %s: %v", sessionID, err)
	}
}

// --- Debug endpoints ---

func (s *Server) handleDebugEvents(c *gin.Context) {
	events := s.stores.Events.List()
	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}

func (s *Server) handleDebugTodos(c *gin.Context) {
	todos := s.stores.Todos.List()
	c.JSON(http.StatusOK, gin.H{"todos": todos, "count": len(todos)})
}

func (s *Server) handleDebugNotes(c *gin.Context) {
	notes := s.stores.Notes.List()
	c.JSON(http.StatusOK, gin.H{"notes": notes, "count": len(notes)})
}

func (s *Server) handleDebugContacts(c *gin.Context) {
	contacts := s.stores.Contacts.List()
	c.JSON(http.StatusOK, gin.H{"contacts": contacts, "count": len(contacts)})
}

func (s *Server) handleDebugClearEvents(c *gin.Context) {
	if err := s.stores.Events.ReplaceAll(nil); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "all events cleared"})
}

func (s *Server) handleDebugSessions(c *gin.Context) {
	if s.sessions == nil {
		c.JSON(http.StatusOK, gin.H{"sessions": nil, "count": 0})
		return
	}
	sessions, err := s.sessions.ListSessions()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions, "count": len(sessions)})
}

func (s *Server) handleDebugCalendarStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": s.calendarStatus()})
}

// sessionTitle derives a short session title from the first message.
func sessionTitle(message string) string {
	const limit = 48
	runes := []rune(message)
	if len(runes) <= limit {
		return message
	}
	return string(runes[:limit]) + "..."
}
