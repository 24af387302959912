// Package cache implements the keyed response store: insert/lookup/remove,
// TTL expiry, tag invalidation, memory and entry accounting, and capacity
// enforcement delegated to an eviction strategy.
package cache

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/plexcord/plexcord/config"
	"github.com/plexcord/plexcord/internal/cache/model"
	"github.com/plexcord/plexcord/internal/errs"
	"github.com/plexcord/plexcord/internal/eviction"
)

// Store owns the key→entry mapping exclusively. A single mutex guards it;
// operations run to completion, so invariants hold between any two calls.
type Store struct {
	mu       sync.Mutex
	cfg      *config.CacheCfg
	clk      clock.Clock
	logger   *slog.Logger
	strategy eviction.Strategy

	items map[uint64]*model.Entry
	mem   int64

	counters  *counters
	startedAt time.Time
}

func New(cfg *config.CacheCfg, clk clock.Clock, logger *slog.Logger) *Store {
	return &Store{
		cfg:       cfg,
		clk:       clk,
		logger:    logger,
		strategy:  eviction.ForStrategy(cfg.Strategy),
		items:     make(map[uint64]*model.Entry),
		counters:  newCounters(),
		startedAt: clk.Now(),
	}
}

// SetOption adjusts a single Set call.
type SetOption func(*setOptions)

type setOptions struct {
	ttl  time.Duration
	tags []string
}

// WithTTL overrides the configured default TTL for this entry.
// Zero disables expiry for it.
func WithTTL(ttl time.Duration) SetOption {
	return func(o *setOptions) { o.ttl = ttl }
}

// WithTags attaches tags for group invalidation.
func WithTags(tags ...string) SetOption {
	return func(o *setOptions) { o.tags = tags }
}

// Set stores value under key, overwriting any existing entry (one set, not a
// delete plus a set). It then evicts until the store is back within its entry
// and memory limits.
func (s *Store) Set(key string, value []byte, opts ...SetOption) error {
	if key == "" {
		return errs.Validationf("cache key must be a non-empty string")
	}

	o := setOptions{ttl: s.cfg.DefaultTTL.Std()}
	for _, opt := range opts {
		opt(&o)
	}

	now := s.clk.Now()
	entry := model.NewEntry(key, value, o.ttl, o.tags, now)
	k := entry.Key().Value()

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, found := s.items[k]; found {
		s.mem -= old.Weight()
	}
	s.items[k] = entry
	s.mem += entry.Weight()
	s.counters.sets.Add(1)

	s.evictUntilWithinLimitLocked(now)

	return nil
}

// Get returns the live value for key. An expired entry is treated as absent,
// removed as a side effect, and counted as a miss.
func (s *Store) Get(key string) ([]byte, bool) {
	k := model.NewKey(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, found := s.items[k.Value()]
	if !found || !entry.Key().IsTheSame(k) {
		// absent, or a hash collision which we treat as a miss
		s.counters.misses.Add(1)
		return nil, false
	}

	now := s.clk.Now()
	if entry.IsExpiredAt(now) {
		s.removeLocked(entry)
		s.counters.misses.Add(1)
		return nil, false
	}

	entry.Touch(now)
	s.counters.hits.Add(1)
	return entry.Payload(), true
}

// Delete removes the entry for key and reports whether anything was removed.
// Missing keys are not an error.
func (s *Store) Delete(key string) bool {
	k := model.NewKey(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, found := s.items[k.Value()]
	if !found || !entry.Key().IsTheSame(k) {
		return false
	}

	s.removeLocked(entry)
	s.counters.deletes.Add(1)
	return true
}

// Clear removes every entry. Cumulative counters are deliberately preserved:
// statistics reflect lifetime activity so operators can still judge cache
// effectiveness across cache-busting events.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[uint64]*model.Entry)
	s.mem = 0
}

// EvictOldest removes exactly one entry chosen by the configured strategy.
// No-op on an empty store.
func (s *Store) EvictOldest() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictOneLocked(s.clk.Now())
}

// InvalidateByTag removes every entry carrying tag and returns how many were
// removed. Removals count as deletions, not evictions.
func (s *Store) InvalidateByTag(tag string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var victims []*model.Entry
	for _, e := range s.items {
		if e.HasTag(tag) {
			victims = append(victims, e)
		}
	}
	for _, e := range victims {
		s.removeLocked(e)
		s.counters.deletes.Add(1)
	}
	return len(victims)
}

// SweepExpired removes every entry past its TTL and returns the count.
// Called by the background sweeper; sweep removals are tracked by the
// sweeper's own counters, not the store's delete/eviction counters.
func (s *Store) SweepExpired() int {
	now := s.clk.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []*model.Entry
	for _, e := range s.items {
		if e.IsExpiredAt(now) {
			expired = append(expired, e)
		}
	}
	for _, e := range expired {
		s.removeLocked(e)
	}
	return len(expired)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) Mem() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mem
}

/**
 * Private API.
 */

func (s *Store) removeLocked(entry *model.Entry) {
	delete(s.items, entry.Key().Value())
	s.mem -= entry.Weight()
}

// evictOneLocked removes a single victim. An empty selection is a no-op,
// never an error.
func (s *Store) evictOneLocked(now time.Time) bool {
	if len(s.items) == 0 {
		return false
	}
	victim, ok := s.strategy.SelectVictim(now, s.entriesLocked())
	if !ok {
		return false
	}
	s.removeLocked(victim)
	s.counters.evictions.Add(1)
	return true
}

// evictUntilWithinLimitLocked evicts repeatedly until both limits hold or no
// entries remain. The just-inserted entry is itself a legal victim, so an
// oversized value cannot wedge the store above its ceiling.
func (s *Store) evictUntilWithinLimitLocked(now time.Time) {
	for (len(s.items) > s.cfg.MaxEntries || s.mem > s.cfg.MaxMemoryBytes) && len(s.items) > 0 {
		if !s.evictOneLocked(now) {
			return
		}
	}
}

func (s *Store) entriesLocked() []*model.Entry {
	entries := make([]*model.Entry, 0, len(s.items))
	for _, e := range s.items {
		entries = append(entries, e)
	}
	return entries
}

func (s *Store) recentEntriesLocked(limit int) []*model.Entry {
	entries := s.entriesLocked()
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].TouchedAt().After(entries[j].TouchedAt())
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
