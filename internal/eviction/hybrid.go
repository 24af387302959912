package eviction

import (
	"time"

	"github.com/plexcord/plexcord/internal/cache/model"
)

// Hybrid combines three signals as a strict precedence order, not a weighted
// score: expired entries first, then the least recently used, with ties
// broken by the lowest access count. Pure LRU starves low-frequency-but-recent
// entries and pure LFU starves cold-start entries; expired-first keeps TTL
// correctness ahead of both.
type Hybrid struct{}

func (Hybrid) Name() string { return "hybrid" }

func (Hybrid) SelectVictim(now time.Time, entries []*model.Entry) (*model.Entry, bool) {
	var expired *model.Entry
	var coldest *model.Entry

	for _, e := range entries {
		if e.IsExpiredAt(now) {
			// among expired entries, prefer the longest-expired
			if expired == nil {
				expired = e
				continue
			}
			de, _ := e.ExpiresAt()
			dx, _ := expired.ExpiresAt()
			if de.Before(dx) {
				expired = e
			}
			continue
		}
		if coldest == nil {
			coldest = e
			continue
		}
		switch {
		case e.TouchedAt().Before(coldest.TouchedAt()):
			coldest = e
		case e.TouchedAt().Equal(coldest.TouchedAt()) && e.AccessCount() < coldest.AccessCount():
			coldest = e
		}
	}

	if expired != nil {
		return expired, true
	}
	if coldest != nil {
		return coldest, true
	}
	return nil, false
}
