package cache

import "sync/atomic"

// counters are cumulative and monotone for the lifetime of the store;
// Clear() intentionally leaves them untouched.
type counters struct {
	hits      atomic.Int64
	misses    atomic.Int64
	sets      atomic.Int64
	deletes   atomic.Int64
	evictions atomic.Int64
}

func newCounters() *counters {
	return &counters{}
}

func (c *counters) snapshot() (hits, misses, sets, deletes, evictions int64) {
	return c.hits.Load(), c.misses.Load(), c.sets.Load(), c.deletes.Load(), c.evictions.Load()
}
