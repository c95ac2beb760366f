package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/TradecrewAI/tradecrew/pkg/assistant"
)

func (r *Repository) CreateSession(ctx context.Context, userID, name string) (assistant.Session, error) {
	session := assistant.Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chat_sessions (id, user_id, name, created_at)
		VALUES (?, ?, ?, ?)
	`, session.ID, session.UserID, session.Name, session.CreatedAt)
	if err != nil {
		return assistant.Session{}, err
	}
	return session, nil
}

func (r *Repository) GetSession(ctx context.Context, id string) (*assistant.Session, error) {
	var session assistant.Session
	err := r.db.GetContext(ctx, &session, `
		SELECT id, user_id, name, created_at
		FROM chat_sessions
		WHERE id = ?
	`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *Repository) ListSessions(ctx context.Context, userID string) ([]*assistant.Session, error) {
	var sessions []*assistant.Session
	err := r.db.SelectContext(ctx, &sessions, `
		SELECT id, user_id, name, created_at
		FROM chat_sessions
		WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *Repository) DeleteSession(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM chat_sessions WHERE id = ?`, id)
	return err
}
