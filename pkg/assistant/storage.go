package assistant

import (
	"context"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Session struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type Message struct {
	ID        string    `db:"id" json:"id"`
	SessionID string    `db:"session_id" json:"sessionId"`
	Role      string    `db:"role" json:"role"`
	Text      string    `db:"text" json:"text"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Storage is the persistence surface for chat sessions. The sqlx
// repository implements it; tests use in-memory fakes.
type Storage interface {
	CreateSession(ctx context.Context, userID, name string) (Session, error)
	// GetSession returns nil when the session does not exist.
	GetSession(ctx context.Context, id string) (*Session, error)
	ListSessions(ctx context.Context, userID string) ([]*Session, error)
	DeleteSession(ctx context.Context, id string) error
	GetMessagesBySessionID(ctx context.Context, sessionID string) ([]*Message, error)
	AddMessage(ctx context.Context, message Message) (string, error)
}
