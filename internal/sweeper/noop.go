package sweeper

// NoOpSweeper is used when the background sweep is disabled; expired entries
// are then only dropped lazily on read or via eviction.
type NoOpSweeper struct{}

// SweeperMetrics always returns zero values.
func (NoOpSweeper) SweeperMetrics() (scans, removed int64) {
	return 0, 0
}

// Close does nothing and returns nil.
func (NoOpSweeper) Close() error {
	return nil
}
