// Package eviction holds the victim-selection policies used when the cache
// is over its entry or memory limits. A strategy is pure decision logic:
// it never mutates entries and holds no state of its own.
package eviction

import (
	"time"

	"github.com/plexcord/plexcord/config"
	"github.com/plexcord/plexcord/internal/cache/model"
)

// Strategy picks a single victim from the given entries.
// ok is false when the entry set is empty; callers treat that as a no-op.
type Strategy interface {
	Name() string
	SelectVictim(now time.Time, entries []*model.Entry) (victim *model.Entry, ok bool)
}

// ForStrategy resolves the configured strategy once at construction.
// Unknown values fall back to hybrid.
func ForStrategy(s config.EvictionStrategy) Strategy {
	switch s {
	case config.StrategyLRU:
		return LRU{}
	case config.StrategyLFU:
		return LFU{}
	case config.StrategyTTL:
		return TTL{}
	case config.StrategyLargest:
		return Largest{}
	default:
		return Hybrid{}
	}
}
