// Package store persists reminders and usage statistics in SQLite.
package store

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

func New(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "open sqlite db %s", dsn)
	}

	// modernc sqlite serializes writes itself; one connection avoids
	// SQLITE_BUSY churn under concurrent timers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "ping sqlite db %s", dsn)
	}

	s := &Store{db: db, logger: logger}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
