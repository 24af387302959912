package telemetry

import (
	"github.com/plexcord/plexcord/internal/cache"
	"github.com/plexcord/plexcord/internal/sweeper"
)

type sampler struct {
	cache   *cache.Store
	sweeper sweeper.Sweeper
}

func newSampler(c *cache.Store, sw sweeper.Sweeper) sampler {
	return sampler{cache: c, sweeper: sw}
}

// snapshot holds cumulative counters (monotonic).
type snapshot struct {
	hits      int64
	misses    int64
	sets      int64
	deletes   int64
	evictions int64

	sweepScans   int64
	sweepRemoved int64
}

func (s sampler) snapshot() snapshot {
	st := s.cache.Stats()
	scans, removed := s.sweeper.SweeperMetrics()

	return snapshot{
		hits:      st.Hits,
		misses:    st.Misses,
		sets:      st.Sets,
		deletes:   st.Deletes,
		evictions: st.Evictions,

		sweepScans:   scans,
		sweepRemoved: removed,
	}
}

// deltaSnapshot converts cumulative snapshots to per-interval deltas.
// If counters reset (cur < prev), it treats cur as the delta.
func deltaSnapshot(prev, cur snapshot) snapshot {
	return snapshot{
		hits:      delta(prev.hits, cur.hits),
		misses:    delta(prev.misses, cur.misses),
		sets:      delta(prev.sets, cur.sets),
		deletes:   delta(prev.deletes, cur.deletes),
		evictions: delta(prev.evictions, cur.evictions),

		sweepScans:   delta(prev.sweepScans, cur.sweepScans),
		sweepRemoved: delta(prev.sweepRemoved, cur.sweepRemoved),
	}
}

func delta(prev, cur int64) int64 {
	if cur >= prev {
		return cur - prev
	}
	return cur
}
