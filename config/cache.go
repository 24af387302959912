package config

import (
	"log/slog"
	"time"
)

// EvictionStrategy selects the victim-picking policy used when the cache
// is over capacity.
type EvictionStrategy string

const (
	// StrategyHybrid prefers expired entries, then the least recently used,
	// breaking ties by lowest access count.
	StrategyHybrid EvictionStrategy = "hybrid"

	// StrategyLRU evicts the entry with the oldest last access.
	StrategyLRU EvictionStrategy = "lru"

	// StrategyLFU evicts the entry with the lowest access count.
	StrategyLFU EvictionStrategy = "lfu"

	// StrategyTTL evicts the entry closest to (or past) expiry.
	StrategyTTL EvictionStrategy = "ttl"

	// StrategyLargest evicts the entry with the biggest payload.
	StrategyLargest EvictionStrategy = "largest"
)

const (
	defaultMaxEntries     = 1000
	defaultMaxMemoryBytes = 64 << 20 // 64MB
	defaultTTL            = time.Hour
	defaultSweepInterval  = time.Minute
	defaultStatsInterval  = 5 * time.Minute
)

type CacheCfg struct {
	// MaxEntries bounds the number of live entries.
	MaxEntries int `yaml:"max_entries"`

	// MaxMemoryBytes bounds the summed payload size of live entries.
	MaxMemoryBytes int64 `yaml:"max_memory_bytes"`

	// DefaultTTL applies to entries stored without an explicit TTL.
	// Zero disables expiry for such entries.
	DefaultTTL Duration `yaml:"default_ttl"`

	// Strategy picks the eviction policy. Resolved once at construction,
	// not per eviction.
	Strategy EvictionStrategy `yaml:"strategy"`

	// SweepInterval is how often the background sweeper removes expired
	// entries. Zero disables the sweeper; expired entries are then only
	// dropped lazily on read or via eviction.
	SweepInterval Duration `yaml:"sweep_interval"`

	// StatLogsEnabled turns on the periodic telemetry log line.
	StatLogsEnabled bool     `yaml:"stat_logs_enabled"`
	StatLogInterval Duration `yaml:"stat_log_interval"`

	// Snapshot configures the optional on-disk JSON snapshot of cached
	// responses. Nil disables persistence.
	Snapshot *SnapshotCfg `yaml:"snapshot"`
}

type SnapshotCfg struct {
	// Path of the snapshot file. Written with owner-only permissions.
	Path string `yaml:"path"`

	// Interval between periodic snapshots. A final snapshot is always
	// attempted on shutdown.
	Interval Duration `yaml:"interval"`
}

func (cfg *SnapshotCfg) Enabled() bool {
	return cfg != nil && cfg.Path != ""
}

func (cfg *CacheCfg) adjust(logger *slog.Logger) {
	if cfg.MaxEntries <= 0 {
		logger.Warn("cache.max_entries invalid, using default", "got", cfg.MaxEntries, "default", defaultMaxEntries)
		cfg.MaxEntries = defaultMaxEntries
	}
	if cfg.MaxMemoryBytes <= 0 {
		logger.Warn("cache.max_memory_bytes invalid, using default", "got", cfg.MaxMemoryBytes, "default", int64(defaultMaxMemoryBytes))
		cfg.MaxMemoryBytes = defaultMaxMemoryBytes
	}
	if cfg.DefaultTTL < 0 {
		logger.Warn("cache.default_ttl negative, using default", "got", cfg.DefaultTTL.String(), "default", defaultTTL.String())
		cfg.DefaultTTL = Duration(defaultTTL)
	}
	switch cfg.Strategy {
	case StrategyHybrid, StrategyLRU, StrategyLFU, StrategyTTL, StrategyLargest:
	case "":
		cfg.Strategy = StrategyHybrid
	default:
		logger.Warn("cache.strategy unknown, using hybrid", "got", string(cfg.Strategy))
		cfg.Strategy = StrategyHybrid
	}
	if cfg.SweepInterval < 0 {
		logger.Warn("cache.sweep_interval negative, using default", "got", cfg.SweepInterval.String(), "default", defaultSweepInterval.String())
		cfg.SweepInterval = Duration(defaultSweepInterval)
	}
	if cfg.StatLogsEnabled && cfg.StatLogInterval <= 0 {
		cfg.StatLogInterval = Duration(defaultStatsInterval)
	}
}
