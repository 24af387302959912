package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestAdjustFillsDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.Adjust(testLogger())

	require.Equal(t, defaultMaxEntries, cfg.Cache.MaxEntries)
	require.Equal(t, int64(defaultMaxMemoryBytes), cfg.Cache.MaxMemoryBytes)
	require.Equal(t, StrategyHybrid, cfg.Cache.Strategy)
	require.Equal(t, defaultMaxDirectDelay, cfg.Reminders.MaxDirectDelay.Std())
	require.Equal(t, defaultPollInterval, cfg.Reminders.PollInterval.Std())
	require.Equal(t, defaultDSN, cfg.Store.DSN)
}

func TestAdjustReplacesInvalidValues(t *testing.T) {
	cfg := &Config{
		Cache: &CacheCfg{
			MaxEntries:     -5,
			MaxMemoryBytes: 0,
			DefaultTTL:     Duration(-time.Minute),
			Strategy:       "frobnicate",
			SweepInterval:  Duration(-time.Second),
		},
		Reminders: &RemindersCfg{
			MaxDirectDelay: Duration(time.Hour),
			PollInterval:   Duration(2 * time.Hour),
		},
	}
	cfg.Adjust(testLogger())

	require.Equal(t, defaultMaxEntries, cfg.Cache.MaxEntries)
	require.Equal(t, int64(defaultMaxMemoryBytes), cfg.Cache.MaxMemoryBytes)
	require.Equal(t, defaultTTL, cfg.Cache.DefaultTTL.Std())
	require.Equal(t, StrategyHybrid, cfg.Cache.Strategy)
	require.Equal(t, defaultSweepInterval, cfg.Cache.SweepInterval.Std())
	require.Equal(t, defaultPollInterval, cfg.Reminders.PollInterval.Std(),
		"poll interval beyond max direct delay falls back")
}

func TestAdjustKeepsValidValues(t *testing.T) {
	cfg := &Config{
		Cache: &CacheCfg{
			MaxEntries:     42,
			MaxMemoryBytes: 1 << 20,
			DefaultTTL:     Duration(10 * time.Minute),
			Strategy:       StrategyLFU,
			SweepInterval:  Duration(30 * time.Second),
		},
	}
	cfg.Adjust(testLogger())

	require.Equal(t, 42, cfg.Cache.MaxEntries)
	require.Equal(t, int64(1<<20), cfg.Cache.MaxMemoryBytes)
	require.Equal(t, 10*time.Minute, cfg.Cache.DefaultTTL.Std())
	require.Equal(t, StrategyLFU, cfg.Cache.Strategy)
}

func TestZeroTTLSurvivesAdjust(t *testing.T) {
	cfg := &Config{Cache: &CacheCfg{MaxEntries: 10, MaxMemoryBytes: 1024}}
	cfg.Adjust(testLogger())
	require.Equal(t, time.Duration(0), cfg.Cache.DefaultTTL.Std(), "zero means no expiry, not a bad value")
}

func TestEnabledNilReceivers(t *testing.T) {
	var snap *SnapshotCfg
	var discord *DiscordCfg
	var pplx *PerplexityCfg
	var httpCfg *HTTPCfg

	require.False(t, snap.Enabled())
	require.False(t, discord.Enabled())
	require.False(t, pplx.Enabled())
	require.False(t, httpCfg.Enabled())

	require.True(t, (&SnapshotCfg{Path: "cache.json"}).Enabled())
	require.True(t, (&DiscordCfg{Token: "tok"}).Enabled())
}

func TestLoadYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plexcord.yaml")
	yaml := `
cache:
  max_entries: 500
  max_memory_bytes: 1048576
  default_ttl: 30m
  strategy: lru
  snapshot:
    path: /tmp/cache.json
    interval: 5m
reminders:
  max_direct_delay: 12h
discord:
  token: tok
  prefix: "!"
perplexity:
  api_key: key
http:
  addr: ":8080"
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path, testLogger())
	require.NoError(t, err)

	require.Equal(t, 500, cfg.Cache.MaxEntries)
	require.Equal(t, 30*time.Minute, cfg.Cache.DefaultTTL.Std())
	require.Equal(t, StrategyLRU, cfg.Cache.Strategy)
	require.True(t, cfg.Cache.Snapshot.Enabled())
	require.Equal(t, 12*time.Hour, cfg.Reminders.MaxDirectDelay.Std())
	require.Equal(t, defaultPollInterval, cfg.Reminders.PollInterval.Std())
	require.True(t, cfg.Discord.Enabled())
	require.Equal(t, "!", cfg.Discord.Prefix)
	require.True(t, cfg.Perplexity.Enabled())
	require.Equal(t, defaultPerplexityModel, cfg.Perplexity.Model)
	require.True(t, cfg.HTTP.Enabled())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), testLogger())
	require.Error(t, err)
}
