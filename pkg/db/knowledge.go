package db

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// KnowledgeItem is a stored piece of industry knowledge for one trade.
// The crawler that produces these lives outside this service; the store
// only holds what it already fetched.
type KnowledgeItem struct {
	ID        string    `db:"id" json:"id"`
	Trade     string    `db:"trade" json:"trade"`
	Topic     string    `db:"topic" json:"topic"`
	Content   string    `db:"content" json:"content"`
	SourceURL *string   `db:"source_url" json:"sourceUrl,omitempty"`
	FetchedAt time.Time `db:"fetched_at" json:"fetchedAt"`
}

// UpsertKnowledgeItem inserts or refreshes the item for (trade, topic).
func (s *Store) UpsertKnowledgeItem(ctx context.Context, item KnowledgeItem) (*KnowledgeItem, error) {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.FetchedAt.IsZero() {
		item.FetchedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO industry_knowledge (id, trade, topic, content, source_url, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(trade, topic) DO UPDATE SET
			content = excluded.content,
			source_url = excluded.source_url,
			fetched_at = excluded.fetched_at
	`, item.ID, item.Trade, item.Topic, item.Content, item.SourceURL, item.FetchedAt)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListKnowledgeByTrade retrieves the stored items for one trade, newest
// first.
func (s *Store) ListKnowledgeByTrade(ctx context.Context, trade string) ([]*KnowledgeItem, error) {
	var items []*KnowledgeItem
	err := s.db.SelectContext(ctx, &items, `
		SELECT id, trade, topic, content, source_url, fetched_at
		FROM industry_knowledge
		WHERE trade = ?
		ORDER BY fetched_at DESC
	`, trade)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ListKnowledge retrieves every stored item ordered by trade and topic,
// which gives the daily tip rotation a stable sequence.
func (s *Store) ListKnowledge(ctx context.Context) ([]*KnowledgeItem, error) {
	var items []*KnowledgeItem
	err := s.db.SelectContext(ctx, &items, `
		SELECT id, trade, topic, content, source_url, fetched_at
		FROM industry_knowledge
		ORDER BY trade, topic
	`)
	if err != nil {
		return nil, err
	}
	return items, nil
}
