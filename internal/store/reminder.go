package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/plexcord/plexcord/model"
)

const reminderColumns = `id, user_id, message, scheduled_ts, timezone, channel_id, server_id, status, created_ts`

func (s *Store) CreateReminder(ctx context.Context, create *model.Reminder) (*model.Reminder, error) {
	rec := *create
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Status == "" {
		rec.Status = model.ReminderStatusActive
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reminder (`+reminderColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.Message, rec.ScheduledAt.Unix(),
		rec.Timezone, rec.ChannelID, rec.ServerID, string(rec.Status), rec.CreatedAt.Unix(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "insert reminder")
	}
	return &rec, nil
}

func (s *Store) GetActiveReminders(ctx context.Context) ([]*model.Reminder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+reminderColumns+`
		FROM reminder
		WHERE status = ?
		ORDER BY scheduled_ts ASC`,
		string(model.ReminderStatusActive),
	)
	if err != nil {
		return nil, errors.Wrap(err, "query active reminders")
	}
	defer rows.Close()
	return scanReminders(rows)
}

func (s *Store) GetUserReminders(ctx context.Context, userID string, includeCompleted bool) ([]*model.Reminder, error) {
	query := `
		SELECT ` + reminderColumns + `
		FROM reminder
		WHERE user_id = ?`
	args := []any{userID}
	if !includeCompleted {
		query += ` AND status = ?`
		args = append(args, string(model.ReminderStatusActive))
	}
	query += ` ORDER BY scheduled_ts ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query user reminders")
	}
	defer rows.Close()
	return scanReminders(rows)
}

// CompleteReminder marks an active reminder completed. The status guard in
// the WHERE clause makes concurrent completions race-safe: only one caller
// observes a row change.
func (s *Store) CompleteReminder(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE reminder SET status = ?
		WHERE id = ? AND status = ?`,
		string(model.ReminderStatusCompleted), id, string(model.ReminderStatusActive),
	)
	if err != nil {
		return false, errors.Wrap(err, "complete reminder")
	}
	return rowChanged(res)
}

func (s *Store) CancelReminder(ctx context.Context, id, userID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE reminder SET status = ?
		WHERE id = ? AND user_id = ? AND status = ?`,
		string(model.ReminderStatusCancelled), id, userID, string(model.ReminderStatusActive),
	)
	if err != nil {
		return false, errors.Wrap(err, "cancel reminder")
	}
	return rowChanged(res)
}

func (s *Store) DeleteReminder(ctx context.Context, id, userID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM reminder
		WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return false, errors.Wrap(err, "delete reminder")
	}
	return rowChanged(res)
}

func rowChanged(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "rows affected")
	}
	return n > 0, nil
}

func scanReminders(rows *sql.Rows) ([]*model.Reminder, error) {
	var list []*model.Reminder
	for rows.Next() {
		var (
			rec         model.Reminder
			status      string
			scheduledTS int64
			createdTS   int64
		)
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.Message, &scheduledTS,
			&rec.Timezone, &rec.ChannelID, &rec.ServerID, &status, &createdTS,
		); err != nil {
			return nil, errors.Wrap(err, "scan reminder")
		}
		rec.Status = model.ReminderStatus(status)
		rec.ScheduledAt = time.Unix(scheduledTS, 0)
		rec.CreatedAt = time.Unix(createdTS, 0)
		list = append(list, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate reminders")
	}
	return list, nil
}
