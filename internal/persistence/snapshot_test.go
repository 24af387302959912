package persistence

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"github.com/plexcord/plexcord/config"
	"github.com/plexcord/plexcord/internal/cache"
)

func testStore() (*cache.Store, *clock.Mock) {
	mock := clock.NewMock()
	cfg := &config.CacheCfg{
		MaxEntries:     100,
		MaxMemoryBytes: 1 << 20,
		DefaultTTL:     config.Duration(time.Hour),
		Strategy:       config.StrategyHybrid,
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return cache.New(cfg, mock, logger), mock
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.json")

	src, mock := testStore()
	require.NoError(t, src.Set("q1", []byte("a1")))
	require.NoError(t, src.Set("q2", []byte("a2")))

	p := New(path, time.Minute, src, mock)
	require.NoError(t, p.Save())

	dst, dstMock := testStore()
	restored := New(path, time.Minute, dst, dstMock).Load()
	require.Equal(t, 2, restored)

	got, ok := dst.Get("q1")
	require.True(t, ok)
	require.Equal(t, []byte("a1"), got)
}

func TestSaveFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix permission bits")
	}
	path := filepath.Join(t.TempDir(), "snap.json")

	src, mock := testStore()
	require.NoError(t, src.Set("q", []byte("a")))
	require.NoError(t, New(path, time.Minute, src, mock).Save())

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSaveFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.json")

	src, mock := testStore()
	require.NoError(t, src.Set("question", []byte("answer")))
	require.NoError(t, New(path, time.Minute, src, mock).Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var records map[string]snapshotRecord
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 1)
	require.Equal(t, "answer", records["question"].Content)
	require.False(t, records["question"].Timestamp.IsZero())
}

func TestLoadMissingFile(t *testing.T) {
	dst, mock := testStore()
	p := New(filepath.Join(t.TempDir(), "absent.json"), time.Minute, dst, mock)
	require.Equal(t, 0, p.Load())
	require.Equal(t, 0, dst.Len())
}

func TestLoadCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	dst, mock := testStore()
	p := New(path, time.Minute, dst, mock)
	require.Equal(t, 0, p.Load())
	require.Equal(t, 0, dst.Len())
}

func TestSaveCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "snap.json")

	src, mock := testStore()
	require.NoError(t, src.Set("q", []byte("a")))
	require.NoError(t, New(path, time.Minute, src, mock).Save())

	_, err := os.Stat(path)
	require.NoError(t, err)
}
