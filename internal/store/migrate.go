package store

import (
	"context"

	"github.com/pkg/errors"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS reminder (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		message TEXT NOT NULL,
		scheduled_ts INTEGER NOT NULL,
		timezone TEXT NOT NULL DEFAULT '',
		channel_id TEXT NOT NULL DEFAULT '',
		server_id TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'active',
		created_ts INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reminder_user_status ON reminder (user_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_reminder_status_scheduled ON reminder (status, scheduled_ts)`,
	`CREATE TABLE IF NOT EXISTS usage_stat (
		user_id TEXT PRIMARY KEY,
		messages INTEGER NOT NULL DEFAULT 0,
		prompt_tokens INTEGER NOT NULL DEFAULT 0,
		completion_tokens INTEGER NOT NULL DEFAULT 0,
		cache_hits INTEGER NOT NULL DEFAULT 0,
		updated_ts INTEGER NOT NULL
	)`,
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "apply migration")
		}
	}
	return nil
}
