package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

// Usage accumulates per-user LLM consumption.
type Usage struct {
	UserID           string    `json:"user_id"`
	Messages         int64     `json:"messages"`
	PromptTokens     int64     `json:"prompt_tokens"`
	CompletionTokens int64     `json:"completion_tokens"`
	CacheHits        int64     `json:"cache_hits"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// RecordUsage adds one interaction's consumption to the user's running
// totals. A cached answer carries zero tokens and bumps cache_hits instead.
func (s *Store) RecordUsage(ctx context.Context, userID string, promptTokens, completionTokens int64, cached bool) error {
	var hit int64
	if cached {
		hit = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usage_stat (user_id, messages, prompt_tokens, completion_tokens, cache_hits, updated_ts)
		VALUES (?, 1, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			messages = messages + 1,
			prompt_tokens = prompt_tokens + excluded.prompt_tokens,
			completion_tokens = completion_tokens + excluded.completion_tokens,
			cache_hits = cache_hits + excluded.cache_hits,
			updated_ts = excluded.updated_ts`,
		userID, promptTokens, completionTokens, hit, time.Now().Unix(),
	)
	return errors.Wrap(err, "record usage")
}

func (s *Store) GetUsage(ctx context.Context, userID string) (*Usage, error) {
	var (
		u         Usage
		updatedTS int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, messages, prompt_tokens, completion_tokens, cache_hits, updated_ts
		FROM usage_stat WHERE user_id = ?`,
		userID,
	).Scan(&u.UserID, &u.Messages, &u.PromptTokens, &u.CompletionTokens, &u.CacheHits, &updatedTS)
	if errors.Is(err, sql.ErrNoRows) {
		return &Usage{UserID: userID}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "query usage")
	}
	u.UpdatedAt = time.Unix(updatedTS, 0)
	return &u, nil
}
