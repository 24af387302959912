// Package scheduler orchestrates the timer registry against persisted
// reminder records: load-and-arm on startup, arm-on-create, disarm on
// cancel/delete, fire-and-mark-complete on due.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"github.com/plexcord/plexcord/internal/errs"
	"github.com/plexcord/plexcord/internal/events"
	"github.com/plexcord/plexcord/internal/timer"
	"github.com/plexcord/plexcord/model"
)

// ReminderStore is the persistent store boundary. The scheduler never
// assumes exclusivity over it: every update's reported outcome is checked
// instead of trusting in-process state.
type ReminderStore interface {
	GetActiveReminders(ctx context.Context) ([]*model.Reminder, error)
	CreateReminder(ctx context.Context, create *model.Reminder) (*model.Reminder, error)
	CompleteReminder(ctx context.Context, id string) (bool, error)
	CancelReminder(ctx context.Context, id, userID string) (bool, error)
	DeleteReminder(ctx context.Context, id, userID string) (bool, error)
	GetUserReminders(ctx context.Context, userID string, includeCompleted bool) ([]*model.Reminder, error)
}

// Scheduler holds only transient timer handles; the records themselves are
// owned by the store.
type Scheduler struct {
	ctx    context.Context
	store  ReminderStore
	timers *timer.Registry
	bus    *events.Bus[*model.Reminder]
	clk    clock.Clock
	logger *slog.Logger

	mu          sync.Mutex
	initialized bool
}

func New(
	ctx context.Context,
	store ReminderStore,
	timers *timer.Registry,
	clk clock.Clock,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		ctx:    ctx,
		store:  store,
		timers: timers,
		bus:    events.NewBus[*model.Reminder](logger),
		clk:    clk,
		logger: logger,
	}
}

// Subscribe registers a listener for due reminders. Delivery is
// at-least-once per successful completion and synchronous.
func (s *Scheduler) Subscribe(fn func(*model.Reminder)) {
	s.bus.Subscribe(fn)
}

// LoadAndArmAll fetches all active records and arms a timer for each.
// Records already past due are completed synchronously here, not via a
// zero-delay timer, so a racing shutdown cannot strand them.
func (s *Scheduler) LoadAndArmAll(ctx context.Context) error {
	reminders, err := s.store.GetActiveReminders(ctx)
	if err != nil {
		return errors.Wrap(err, "load active reminders")
	}

	armed, completed := 0, 0
	for _, rec := range reminders {
		if s.arm(rec) {
			armed++
		} else {
			s.completeNow(ctx, rec)
			completed++
		}
	}

	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()

	s.logger.Info("reminders loaded", "armed", armed, "completed_past_due", completed)
	return nil
}

// Create validates, persists and arms a new reminder, returning the record
// with its store-assigned id.
func (s *Scheduler) Create(ctx context.Context, userID, message string, scheduledAt time.Time, timezone, channelID, serverID string) (*model.Reminder, error) {
	if scheduledAt.IsZero() {
		return nil, errs.Validationf("scheduled time has an invalid format")
	}
	if !scheduledAt.After(s.clk.Now()) {
		return nil, errs.Validationf("scheduled time must be in the future")
	}

	rec, err := s.store.CreateReminder(ctx, &model.Reminder{
		UserID:      userID,
		Message:     message,
		ScheduledAt: scheduledAt,
		Timezone:    timezone,
		ChannelID:   channelID,
		ServerID:    serverID,
		Status:      model.ReminderStatusActive,
	})
	if err != nil {
		return nil, errs.Storage("create reminder", err)
	}
	if rec == nil {
		return nil, errs.Storage("create reminder", nil)
	}

	if !s.arm(rec) {
		// the deadline elapsed between validation and persistence
		s.completeNow(ctx, rec)
	}
	return rec, nil
}

// Cancel disarms the timer first, then asks the store to cancel. The order
// is deliberate: if the process dies between the two, the worst case is a
// row still marked active that never fires, recoverable by a reconciliation
// pass, and never a double-fire.
func (s *Scheduler) Cancel(ctx context.Context, id, userID string) (bool, error) {
	s.timers.Disarm(id)

	ok, err := s.store.CancelReminder(ctx, id, userID)
	if err != nil {
		return false, errors.Wrap(err, "cancel reminder")
	}
	return ok, nil
}

// Delete disarms first for the same reason as Cancel, then removes the row.
func (s *Scheduler) Delete(ctx context.Context, id, userID string) (bool, error) {
	s.timers.Disarm(id)

	ok, err := s.store.DeleteReminder(ctx, id, userID)
	if err != nil {
		return false, errors.Wrap(err, "delete reminder")
	}
	return ok, nil
}

// UserReminders lists a user's reminders, optionally including finished ones.
func (s *Scheduler) UserReminders(ctx context.Context, userID string, includeCompleted bool) ([]*model.Reminder, error) {
	return s.store.GetUserReminders(ctx, userID, includeCompleted)
}

// Shutdown disarms every live timer. Idempotent; safe when nothing is armed.
func (s *Scheduler) Shutdown() {
	s.timers.DisarmAll()

	s.mu.Lock()
	s.initialized = false
	s.mu.Unlock()
}

// Initialized reports whether LoadAndArmAll completed since the last
// Shutdown.
func (s *Scheduler) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// arm registers a timer for the record; returns false when the record is
// already due, in which case the caller completes it immediately.
func (s *Scheduler) arm(rec *model.Reminder) bool {
	return s.timers.Arm(rec.ID, rec.ScheduledAt, func() { s.fire(rec) })
}

// fire runs on timer expiry. The store confirms the completion; "no change"
// means another path already finished the record, and nothing is emitted.
func (s *Scheduler) fire(rec *model.Reminder) {
	s.timers.Disarm(rec.ID)

	ok, err := s.store.CompleteReminder(s.ctx, rec.ID)
	if err != nil {
		s.logger.Error("failed to complete due reminder", "id", rec.ID, "error", err)
		return
	}
	if !ok {
		s.logger.Warn("due reminder was already completed or cancelled", "id", rec.ID)
		return
	}

	rec.Status = model.ReminderStatusCompleted
	s.bus.Publish(rec)
}

// completeNow finishes a past-due record synchronously and, when the store
// confirms a state change, emits the due event.
func (s *Scheduler) completeNow(ctx context.Context, rec *model.Reminder) {
	ok, err := s.store.CompleteReminder(ctx, rec.ID)
	if err != nil {
		s.logger.Error("failed to complete past-due reminder", "id", rec.ID, "error", err)
		return
	}
	if !ok {
		s.logger.Warn("past-due reminder was already completed or cancelled", "id", rec.ID)
		return
	}

	rec.Status = model.ReminderStatusCompleted
	s.bus.Publish(rec)
}
