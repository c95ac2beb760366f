package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Store wraps a SQLite connection and provides the persistence operations
// the triage, assistant and knowledge services depend on.
//
// 1. The creation method creates the tables if they do not exist.
// 2. Convenience methods for querying data.
// 3. Convenience methods for inserting and updating data.
type Store struct {
	db *sqlx.DB
}

// NewStore creates a new SQLite-backed store.
func NewStore(dbPath string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
	}

	// Enable WAL mode for better concurrency and performance
	_, err = db.Exec("PRAGMA journal_mode=WAL;")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS email_analyses (
			id TEXT PRIMARY KEY,
			email_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			priority TEXT NOT NULL,
			category TEXT NOT NULL,
			urgency_score INTEGER NOT NULL,
			business_relevance INTEGER NOT NULL,
			sentiment TEXT,
			action_required BOOLEAN NOT NULL DEFAULT FALSE,
			keywords JSON,
			suggested_actions JSON,
			reasoning TEXT,
			notification_sent BOOLEAN NOT NULL DEFAULT FALSE,
			analyzed_at TIMESTAMP NOT NULL,
			UNIQUE(user_id, email_id)
		);
		CREATE INDEX IF NOT EXISTS idx_email_analyses_user_id ON email_analyses(user_id);
		CREATE INDEX IF NOT EXISTS idx_email_analyses_analyzed_at ON email_analyses(analyzed_at);
		CREATE INDEX IF NOT EXISTS idx_email_analyses_category ON email_analyses(category);

		CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			due_date TIMESTAMP,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks(user_id);

		CREATE TABLE IF NOT EXISTS chat_sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_chat_sessions_user_id ON chat_sessions(user_id);

		CREATE TABLE IF NOT EXISTS chat_messages (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			text TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (session_id) REFERENCES chat_sessions(id) ON DELETE CASCADE
		);
		CREATE INDEX IF NOT EXISTS idx_chat_messages_session_id ON chat_messages(session_id);

		CREATE TABLE IF NOT EXISTS industry_knowledge (
			id TEXT PRIMARY KEY,
			trade TEXT NOT NULL,
			topic TEXT NOT NULL,
			content TEXT NOT NULL,
			source_url TEXT,
			fetched_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(trade, topic)
		);
		CREATE INDEX IF NOT EXISTS idx_industry_knowledge_trade ON industry_knowledge(trade);
	`)
	if err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying sqlx.DB instance
func (s *Store) DB() *sqlx.DB {
	return s.db
}
