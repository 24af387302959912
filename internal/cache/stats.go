package cache

import (
	"fmt"
	"time"

	"github.com/plexcord/plexcord/internal/shared/bytes"
)

const recentEntriesCap = 10

// Stats is the statistics surface consumed by display layers. Every field is
// always present; the error path returns the same shape fully zeroed.
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Sets      int64 `json:"sets"`
	Deletes   int64 `json:"deletes"`
	Evictions int64 `json:"evictions"`

	HitRate float64 `json:"hitRate"`

	EntryCount           int    `json:"entryCount"`
	MemoryUsage          int64  `json:"memoryUsage"`
	MemoryUsageFormatted string `json:"memoryUsageFormatted"`
	MaxMemory            int64  `json:"maxMemory"`
	MaxMemoryFormatted   string `json:"maxMemoryFormatted"`
	MaxSize              int    `json:"maxSize"`

	UptimeSeconds    int64  `json:"uptime"`
	UptimeFormatted  string `json:"uptimeFormatted"`
	EvictionStrategy string `json:"evictionStrategy"`

	Error string `json:"error,omitempty"`
}

// EntrySummary is a bounded diagnostic view of one entry.
type EntrySummary struct {
	Key          string        `json:"key"`
	ValuePreview string        `json:"valuePreview"`
	TTL          time.Duration `json:"ttl"`
}

// DetailedInfo is Stats plus a most-recent-first, capped entry listing.
type DetailedInfo struct {
	Stats         Stats          `json:"stats"`
	RecentEntries []EntrySummary `json:"recentEntries"`
}

// Stats returns lifetime counters and current occupancy. It never fails
// visibly: an internal error yields the zeroed shape with Error set, so
// callers never render a missing field.
func (s *Store) Stats() (st Stats) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("cache stats collection failed", "panic", r)
			st = ZeroStats(fmt.Sprintf("stats unavailable: %v", r))
		}
	}()

	hits, misses, sets, deletes, evictions := s.counters.snapshot()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	s.mu.Lock()
	entryCount := len(s.items)
	mem := s.mem
	s.mu.Unlock()

	uptime := s.clk.Now().Sub(s.startedAt)

	return Stats{
		Hits:      hits,
		Misses:    misses,
		Sets:      sets,
		Deletes:   deletes,
		Evictions: evictions,

		HitRate: hitRate,

		EntryCount:           entryCount,
		MemoryUsage:          mem,
		MemoryUsageFormatted: bytes.FmtMem(mem),
		MaxMemory:            s.cfg.MaxMemoryBytes,
		MaxMemoryFormatted:   bytes.FmtMem(s.cfg.MaxMemoryBytes),
		MaxSize:              s.cfg.MaxEntries,

		UptimeSeconds:    int64(uptime.Seconds()),
		UptimeFormatted:  bytes.FmtDuration(uptime),
		EvictionStrategy: s.strategy.Name(),
	}
}

// ZeroStats is the degraded stats shape: numeric fields zero, formatted
// fields showing zero-equivalents, with a human-readable error message.
func ZeroStats(errMsg string) Stats {
	return Stats{
		MemoryUsageFormatted: bytes.FmtMem(0),
		MaxMemoryFormatted:   bytes.FmtMem(0),
		UptimeFormatted:      bytes.FmtDuration(0),
		EvictionStrategy:     "unknown",
		Error:                errMsg,
	}
}

// DetailedInfo returns stats plus summaries of the most recently touched
// entries. The listing is capped so diagnostics payloads stay bounded.
func (s *Store) DetailedInfo() DetailedInfo {
	st := s.Stats()

	s.mu.Lock()
	recent := s.recentEntriesLocked(recentEntriesCap)
	summaries := make([]EntrySummary, 0, len(recent))
	for _, e := range recent {
		summaries = append(summaries, EntrySummary{
			Key:          e.RawKey(),
			ValuePreview: preview(e.Payload()),
			TTL:          e.TTL(),
		})
	}
	s.mu.Unlock()

	return DetailedInfo{Stats: st, RecentEntries: summaries}
}

const previewLen = 80

func preview(payload []byte) string {
	if len(payload) <= previewLen {
		return string(payload)
	}
	return string(payload[:previewLen]) + "..."
}
