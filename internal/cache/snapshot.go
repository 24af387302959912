package cache

import (
	"time"

	"github.com/plexcord/plexcord/internal/cache/model"
)

// SnapshotEntry is the persisted view of one live entry.
type SnapshotEntry struct {
	Key       string
	Payload   []byte
	CreatedAt time.Time
}

// Export returns the live, non-expired entries for snapshotting.
func (s *Store) Export() []SnapshotEntry {
	now := s.clk.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]SnapshotEntry, 0, len(s.items))
	for _, e := range s.items {
		if e.IsExpiredAt(now) {
			continue
		}
		out = append(out, SnapshotEntry{
			Key:       e.RawKey(),
			Payload:   e.Payload(),
			CreatedAt: e.CreatedAt(),
		})
	}
	return out
}

// Restore re-inserts snapshotted entries, preserving their original creation
// time so TTL accounting continues where it left off. Entries already past
// the default TTL are skipped. Restores do not count as sets: the counters
// reflect caller activity, not process restarts.
func (s *Store) Restore(entries []SnapshotEntry) int {
	now := s.clk.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	restored := 0
	for _, se := range entries {
		if se.Key == "" {
			continue
		}
		entry := model.NewRestoredEntry(se.Key, se.Payload, s.cfg.DefaultTTL.Std(), se.CreatedAt)
		if entry.IsExpiredAt(now) {
			continue
		}
		k := entry.Key().Value()
		if old, found := s.items[k]; found {
			s.mem -= old.Weight()
		}
		s.items[k] = entry
		s.mem += entry.Weight()
		restored++
	}

	s.evictUntilWithinLimitLocked(now)
	return restored
}
