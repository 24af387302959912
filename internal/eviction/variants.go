package eviction

import (
	"time"

	"github.com/plexcord/plexcord/internal/cache/model"
)

// LRU evicts the entry with the oldest last access.
type LRU struct{}

func (LRU) Name() string { return "lru" }

func (LRU) SelectVictim(_ time.Time, entries []*model.Entry) (*model.Entry, bool) {
	var victim *model.Entry
	for _, e := range entries {
		if victim == nil || e.TouchedAt().Before(victim.TouchedAt()) {
			victim = e
		}
	}
	return victim, victim != nil
}

// LFU evicts the entry with the lowest access count, preferring the older
// access when counts are equal.
type LFU struct{}

func (LFU) Name() string { return "lfu" }

func (LFU) SelectVictim(_ time.Time, entries []*model.Entry) (*model.Entry, bool) {
	var victim *model.Entry
	for _, e := range entries {
		if victim == nil ||
			e.AccessCount() < victim.AccessCount() ||
			(e.AccessCount() == victim.AccessCount() && e.TouchedAt().Before(victim.TouchedAt())) {
			victim = e
		}
	}
	return victim, victim != nil
}

// TTL evicts the entry closest to (or past) its expiry deadline. Entries
// without a TTL are only picked when nothing else qualifies.
type TTL struct{}

func (TTL) Name() string { return "ttl" }

func (TTL) SelectVictim(_ time.Time, entries []*model.Entry) (*model.Entry, bool) {
	var victim *model.Entry
	var victimDeadline time.Time
	var fallback *model.Entry

	for _, e := range entries {
		deadline, hasTTL := e.ExpiresAt()
		if !hasTTL {
			if fallback == nil {
				fallback = e
			}
			continue
		}
		if victim == nil || deadline.Before(victimDeadline) {
			victim, victimDeadline = e, deadline
		}
	}

	if victim != nil {
		return victim, true
	}
	return fallback, fallback != nil
}

// Largest evicts the entry with the biggest payload.
type Largest struct{}

func (Largest) Name() string { return "largest" }

func (Largest) SelectVictim(_ time.Time, entries []*model.Entry) (*model.Entry, bool) {
	var victim *model.Entry
	for _, e := range entries {
		if victim == nil || e.Weight() > victim.Weight() {
			victim = e
		}
	}
	return victim, victim != nil
}
