package help

import (
	"path/filepath"
	"time"

	"github.com/plexcord/plexcord/config"
)

func CacheCfg() *config.CacheCfg {
	return &config.CacheCfg{
		MaxEntries:     1000,
		MaxMemoryBytes: 64 << 20,
		DefaultTTL:     config.Duration(time.Hour),
		Strategy:       config.StrategyHybrid,
		SweepInterval:  config.Duration(time.Minute),
	}
}

func SmallCacheCfg() *config.CacheCfg {
	c := CacheCfg()
	c.MaxEntries = 5
	c.MaxMemoryBytes = 1024
	return c
}

func SnapshotCacheCfg(dir string) *config.CacheCfg {
	c := CacheCfg()
	c.Snapshot = &config.SnapshotCfg{
		Path:     filepath.Join(dir, "cache.json"),
		Interval: config.Duration(time.Minute),
	}
	return c
}

func RemindersCfg() *config.RemindersCfg {
	return &config.RemindersCfg{
		MaxDirectDelay: config.Duration(24 * time.Hour),
		PollInterval:   config.Duration(time.Minute),
	}
}
