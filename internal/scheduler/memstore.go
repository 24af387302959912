package scheduler

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/plexcord/plexcord/model"
)

// MemoryStore is an in-memory ReminderStore used in tests and as a fallback
// when no database is configured.
type MemoryStore struct {
	mu        sync.RWMutex
	reminders map[string]*model.Reminder

	// FailCreates makes CreateReminder report a persistence failure.
	FailCreates bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{reminders: make(map[string]*model.Reminder)}
}

func (s *MemoryStore) GetActiveReminders(_ context.Context) ([]*model.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*model.Reminder
	for _, r := range s.reminders {
		if r.Status == model.ReminderStatusActive {
			cp := *r
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ScheduledAt.Before(result[j].ScheduledAt) })
	return result, nil
}

func (s *MemoryStore) CreateReminder(_ context.Context, create *model.Reminder) (*model.Reminder, error) {
	if s.FailCreates {
		return nil, errors.New("reminder store unavailable")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *create
	cp.ID = uuid.NewString()
	cp.Status = model.ReminderStatusActive
	s.reminders[cp.ID] = &cp

	out := cp
	return &out, nil
}

func (s *MemoryStore) CompleteReminder(_ context.Context, id string) (bool, error) {
	return s.transition(id, "", model.ReminderStatusCompleted)
}

func (s *MemoryStore) CancelReminder(_ context.Context, id, userID string) (bool, error) {
	return s.transition(id, userID, model.ReminderStatusCancelled)
}

func (s *MemoryStore) DeleteReminder(_ context.Context, id, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reminders[id]
	if !ok || (userID != "" && r.UserID != userID) {
		return false, nil
	}
	delete(s.reminders, id)
	return true, nil
}

func (s *MemoryStore) GetUserReminders(_ context.Context, userID string, includeCompleted bool) ([]*model.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*model.Reminder
	for _, r := range s.reminders {
		if r.UserID != userID {
			continue
		}
		if !includeCompleted && r.Status != model.ReminderStatusActive {
			continue
		}
		cp := *r
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ScheduledAt.Before(result[j].ScheduledAt) })
	return result, nil
}

// transition moves an active row to the target status; only active rows
// match, so a repeated completion reports "no change".
func (s *MemoryStore) transition(id, userID string, to model.ReminderStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reminders[id]
	if !ok || r.Status != model.ReminderStatusActive {
		return false, nil
	}
	if userID != "" && r.UserID != userID {
		return false, nil
	}
	r.Status = to
	return true, nil
}
