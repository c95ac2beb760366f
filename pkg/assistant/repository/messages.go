package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/TradecrewAI/tradecrew/pkg/assistant"
)

func (r *Repository) GetMessagesBySessionID(ctx context.Context, sessionID string) ([]*assistant.Message, error) {
	var messages []*assistant.Message
	err := r.db.SelectContext(ctx, &messages, `
		SELECT id, session_id, role, text, created_at
		FROM chat_messages
		WHERE session_id = ?
		ORDER BY created_at ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *Repository) AddMessage(ctx context.Context, message assistant.Message) (string, error) {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chat_messages (id, session_id, role, text, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, message.ID, message.SessionID, message.Role, message.Text, message.CreatedAt)
	if err != nil {
		return "", err
	}
	return message.ID, nil
}
