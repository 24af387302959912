package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"github.com/plexcord/plexcord/config"
	"github.com/plexcord/plexcord/internal/cache"
)

func testServer(t *testing.T) (*Server, *cache.Store) {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	cfg := &config.CacheCfg{
		MaxEntries:     100,
		MaxMemoryBytes: 1 << 20,
		DefaultTTL:     config.Duration(time.Hour),
	}
	store := cache.New(cfg, clock.NewMock(), logger)
	return New(":0", store, logger), store
}

func TestHealthz(t *testing.T) {
	s, _ := testServer(t)

	rec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCacheStatsEndpoint(t *testing.T) {
	s, store := testServer(t)

	require.NoError(t, store.Set("q", []byte("a")))
	_, _ = store.Get("q")

	rec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cache/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var st cache.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	require.Equal(t, int64(1), st.Hits)
	require.Equal(t, int64(1), st.Sets)
	require.Equal(t, 1, st.EntryCount)
	require.NotEmpty(t, st.MemoryUsageFormatted)
}

func TestCacheInfoEndpoint(t *testing.T) {
	s, store := testServer(t)

	require.NoError(t, store.Set("question", []byte("answer")))

	rec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cache/info", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var info cache.DetailedInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	require.Len(t, info.RecentEntries, 1)
	require.Equal(t, "question", info.RecentEntries[0].Key)
	require.Equal(t, "answer", info.RecentEntries[0].ValuePreview)
}

func TestMutationVerbsRejected(t *testing.T) {
	s, _ := testServer(t)

	rec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cache/stats", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
