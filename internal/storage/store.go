// Package storage persists conversation sessions so web chats survive
// across requests and CLI runs leave a reviewable transcript.
package storage

import "github.com/DavidVart/Personal-Assistant/internal/chat"

// SessionMeta 会话元数据
// SessionMeta holds session metadata
type SessionMeta struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Mode      string `json:"mode"`
	Model     string `json:"model"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Store 持久化接口
// Store is the persistence interface
type Store interface {
	// Session 操作 / Session operations
	CreateSession(meta SessionMeta) error
	LoadSession(id string) (SessionMeta, error)
	ListSessions() ([]SessionMeta, error)

	// Message 操作 / Message operations
	SaveMessages(sessionID string, messages []chat.Message) error
	LoadMessages(sessionID string) ([]chat.Message, error)

	// 生命周期 / Lifecycle
	Close() error
}
