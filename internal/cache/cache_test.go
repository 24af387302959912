package cache

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"github.com/plexcord/plexcord/config"
	"github.com/plexcord/plexcord/internal/errs"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func testCfg() *config.CacheCfg {
	return &config.CacheCfg{
		MaxEntries:     100,
		MaxMemoryBytes: 1024 * 1024,
		DefaultTTL:     config.Duration(time.Hour),
		Strategy:       config.StrategyHybrid,
	}
}

func newTestStore(cfg *config.CacheCfg) (*Store, *clock.Mock) {
	mock := clock.NewMock()
	return New(cfg, mock, testLogger()), mock
}

func TestSetGetRoundTrip(t *testing.T) {
	s, _ := newTestStore(testCfg())

	require.NoError(t, s.Set("question", []byte("answer")))

	got, ok := s.Get("question")
	require.True(t, ok)
	require.Equal(t, []byte("answer"), got)

	_, ok = s.Get("never stored")
	require.False(t, ok)
}

func TestEmptyKeyRejected(t *testing.T) {
	s, _ := newTestStore(testCfg())

	err := s.Set("", []byte("value"))
	require.Error(t, err)
	require.True(t, errs.IsValidation(err))
	require.Equal(t, 0, s.Len())
}

func TestOverwriteCountsOneSet(t *testing.T) {
	s, _ := newTestStore(testCfg())

	require.NoError(t, s.Set("k", []byte("first")))
	require.NoError(t, s.Set("k", []byte("second, longer payload")))

	got, ok := s.Get("k")
	require.True(t, ok)
	require.Equal(t, []byte("second, longer payload"), got)

	st := s.Stats()
	require.Equal(t, int64(2), st.Sets)
	require.Equal(t, int64(0), st.Deletes)
	require.Equal(t, 1, st.EntryCount)
	require.Equal(t, int64(len("second, longer payload")), s.Mem())
}

func TestExpiredEntryIsMissAndRemoved(t *testing.T) {
	s, mock := newTestStore(testCfg())

	require.NoError(t, s.Set("k", []byte("v"), WithTTL(time.Minute)))

	mock.Add(59 * time.Second)
	_, ok := s.Get("k")
	require.True(t, ok)

	mock.Add(2 * time.Minute)
	_, ok = s.Get("k")
	require.False(t, ok)
	require.Equal(t, 0, s.Len(), "expired entry must be removed on access")

	st := s.Stats()
	require.Equal(t, int64(1), st.Hits)
	require.Equal(t, int64(1), st.Misses)
}

func TestZeroTTLNeverExpires(t *testing.T) {
	s, mock := newTestStore(testCfg())

	require.NoError(t, s.Set("k", []byte("v"), WithTTL(0)))

	mock.Add(24 * 365 * time.Hour)
	_, ok := s.Get("k")
	require.True(t, ok)
}

func TestEntryLimitEnforced(t *testing.T) {
	cfg := testCfg()
	cfg.MaxEntries = 10
	s, mock := newTestStore(cfg)

	for i := 0; i < 25; i++ {
		require.NoError(t, s.Set(fmt.Sprintf("key-%d", i), []byte("v")))
		mock.Add(time.Millisecond)
		require.LessOrEqual(t, s.Len(), cfg.MaxEntries)
	}

	st := s.Stats()
	require.Equal(t, int64(15), st.Evictions)
}

func TestMemoryLimitEnforced(t *testing.T) {
	cfg := testCfg()
	cfg.MaxMemoryBytes = 100
	s, mock := newTestStore(cfg)

	for i := 0; i < 10; i++ {
		require.NoError(t, s.Set(fmt.Sprintf("key-%d", i), []byte(strings.Repeat("x", 40))))
		mock.Add(time.Millisecond)
		require.LessOrEqual(t, s.Mem(), cfg.MaxMemoryBytes)
	}
}

func TestOversizedEntryCannotWedgeStore(t *testing.T) {
	cfg := testCfg()
	cfg.MaxMemoryBytes = 100
	s, _ := newTestStore(cfg)

	// Larger than the whole budget: it gets evicted right back out.
	require.NoError(t, s.Set("huge", []byte(strings.Repeat("x", 500))))
	require.LessOrEqual(t, s.Mem(), cfg.MaxMemoryBytes)
	require.Equal(t, 0, s.Len())
}

func TestDelete(t *testing.T) {
	s, _ := newTestStore(testCfg())

	require.NoError(t, s.Set("k", []byte("v")))
	require.True(t, s.Delete("k"))
	require.False(t, s.Delete("k"), "double delete reports nothing removed")
	require.Equal(t, int64(0), s.Mem())

	st := s.Stats()
	require.Equal(t, int64(1), st.Deletes)
}

func TestClearPreservesCounters(t *testing.T) {
	s, _ := newTestStore(testCfg())

	require.NoError(t, s.Set("a", []byte("1")))
	require.NoError(t, s.Set("b", []byte("2")))
	_, _ = s.Get("a")
	_, _ = s.Get("missing")

	before := s.Stats()
	s.Clear()
	after := s.Stats()

	require.Equal(t, 0, after.EntryCount)
	require.Equal(t, int64(0), after.MemoryUsage)
	require.Equal(t, before.Hits, after.Hits)
	require.Equal(t, before.Misses, after.Misses)
	require.Equal(t, before.Sets, after.Sets)
}

func TestInvalidateByTag(t *testing.T) {
	s, _ := newTestStore(testCfg())

	require.NoError(t, s.Set("a", []byte("1"), WithTags("user:42")))
	require.NoError(t, s.Set("b", []byte("2"), WithTags("user:42", "topic:go")))
	require.NoError(t, s.Set("c", []byte("3"), WithTags("user:7")))

	removed := s.InvalidateByTag("user:42")
	require.Equal(t, 2, removed)
	require.Equal(t, 1, s.Len())

	_, ok := s.Get("c")
	require.True(t, ok)

	st := s.Stats()
	require.Equal(t, int64(2), st.Deletes)
	require.Equal(t, int64(0), st.Evictions, "tag invalidation is a delete, not an eviction")
}

func TestSweepExpired(t *testing.T) {
	s, mock := newTestStore(testCfg())

	require.NoError(t, s.Set("short", []byte("v"), WithTTL(time.Minute)))
	require.NoError(t, s.Set("long", []byte("v"), WithTTL(time.Hour)))
	require.NoError(t, s.Set("forever", []byte("v"), WithTTL(0)))

	mock.Add(10 * time.Minute)
	require.Equal(t, 1, s.SweepExpired())
	require.Equal(t, 2, s.Len())

	st := s.Stats()
	require.Equal(t, int64(0), st.Deletes, "sweeps do not touch store delete counters")
}

func TestHitRate(t *testing.T) {
	s, _ := newTestStore(testCfg())

	st := s.Stats()
	require.Zero(t, st.HitRate, "no traffic means zero, not NaN")

	require.NoError(t, s.Set("k", []byte("v")))
	_, _ = s.Get("k")
	_, _ = s.Get("k")
	_, _ = s.Get("k")
	_, _ = s.Get("missing")

	st = s.Stats()
	require.InDelta(t, 0.75, st.HitRate, 1e-9)
}

func TestStatsAlwaysComplete(t *testing.T) {
	s, mock := newTestStore(testCfg())
	mock.Add(3 * time.Minute)

	st := s.Stats()
	require.Empty(t, st.Error)
	require.NotEmpty(t, st.MemoryUsageFormatted)
	require.NotEmpty(t, st.MaxMemoryFormatted)
	require.NotEmpty(t, st.UptimeFormatted)
	require.Equal(t, "hybrid", st.EvictionStrategy)
	require.Equal(t, int64(180), st.UptimeSeconds)
}

func TestZeroStatsShape(t *testing.T) {
	st := ZeroStats("stats unavailable: boom")
	require.Equal(t, "0 B", st.MemoryUsageFormatted)
	require.Equal(t, "0s", st.UptimeFormatted)
	require.Equal(t, "unknown", st.EvictionStrategy)
	require.Equal(t, "stats unavailable: boom", st.Error)
}

func TestDetailedInfoCapsListing(t *testing.T) {
	s, mock := newTestStore(testCfg())

	for i := 0; i < 30; i++ {
		require.NoError(t, s.Set(fmt.Sprintf("key-%d", i), []byte(strings.Repeat("p", 200))))
		mock.Add(time.Second)
	}

	info := s.DetailedInfo()
	require.Len(t, info.RecentEntries, recentEntriesCap)
	require.Equal(t, "key-29", info.RecentEntries[0].Key, "most recently touched first")
	require.Len(t, info.RecentEntries[0].ValuePreview, previewLen+3, "long payloads are truncated with ellipsis")
}

func TestExportRestore(t *testing.T) {
	s, mock := newTestStore(testCfg())

	require.NoError(t, s.Set("keep", []byte("v1"), WithTTL(time.Hour)))
	require.NoError(t, s.Set("expiring", []byte("v2"), WithTTL(time.Minute)))

	mock.Add(10 * time.Minute)
	snap := s.Export()
	require.Len(t, snap, 1, "expired entries are not exported")

	fresh, _ := newTestStore(testCfg())
	require.Equal(t, 1, fresh.Restore(snap))

	got, ok := fresh.Get("keep")
	require.True(t, ok)
	require.Equal(t, []byte("v1"), got)

	st := fresh.Stats()
	require.Equal(t, int64(0), st.Sets, "restores are not sets")
}
