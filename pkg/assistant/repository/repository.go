package repository

import (
	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"
)

// Repository stores chat sessions and messages in the shared SQLite
// database.
type Repository struct {
	logger *log.Logger
	db     *sqlx.DB
}

func NewRepository(logger *log.Logger, db *sqlx.DB) *Repository {
	return &Repository{
		logger: logger,
		db:     db,
	}
}
