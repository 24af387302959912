package sweeper

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"github.com/plexcord/plexcord/config"
	"github.com/plexcord/plexcord/internal/cache"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestDisabledSweepIntervalYieldsNoOp(t *testing.T) {
	cfg := &config.CacheCfg{MaxEntries: 10, MaxMemoryBytes: 1 << 20}
	mock := clock.NewMock()
	store := cache.New(cfg, mock, testLogger())

	s := New(context.Background(), cfg, mock, testLogger(), store)
	require.IsType(t, &NoOpSweeper{}, s)

	scans, removed := s.SweeperMetrics()
	require.Zero(t, scans)
	require.Zero(t, removed)
	require.NoError(t, s.Close())
}

func TestWorkerSweepsExpiredEntries(t *testing.T) {
	cfg := &config.CacheCfg{
		MaxEntries:     10,
		MaxMemoryBytes: 1 << 20,
		SweepInterval:  config.Duration(time.Minute),
	}
	mock := clock.NewMock()
	store := cache.New(cfg, mock, testLogger())

	require.NoError(t, store.Set("short", []byte("v"), cache.WithTTL(30*time.Second)))
	require.NoError(t, store.Set("long", []byte("v"), cache.WithTTL(time.Hour)))

	s := New(context.Background(), cfg, mock, testLogger(), store)
	defer s.Close()

	// let the worker goroutine register its ticker before advancing
	time.Sleep(10 * time.Millisecond)
	mock.Add(time.Minute)
	require.Eventually(t, func() bool {
		scans, removed := s.SweeperMetrics()
		return scans == 1 && removed == 1
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, 1, store.Len())
}

func TestCloseStopsWorker(t *testing.T) {
	cfg := &config.CacheCfg{
		MaxEntries:     10,
		MaxMemoryBytes: 1 << 20,
		SweepInterval:  config.Duration(time.Minute),
	}
	mock := clock.NewMock()
	store := cache.New(cfg, mock, testLogger())

	s := New(context.Background(), cfg, mock, testLogger(), store)
	require.NoError(t, s.Close())

	// give the goroutine a moment to exit, then verify no further scans
	time.Sleep(10 * time.Millisecond)
	mock.Add(10 * time.Minute)
	time.Sleep(10 * time.Millisecond)

	scans, _ := s.SweeperMetrics()
	require.Zero(t, scans)
}
