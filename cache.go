// Package plexcord wires the response cache store together with its
// background workers: the TTL sweeper, the telemetry logger and the optional
// on-disk snapshot persister.
package plexcord

import (
	"context"
	"io"
	"log/slog"

	"github.com/benbjohnson/clock"

	"github.com/plexcord/plexcord/config"
	"github.com/plexcord/plexcord/internal/cache"
	"github.com/plexcord/plexcord/internal/persistence"
	"github.com/plexcord/plexcord/internal/sweeper"
	"github.com/plexcord/plexcord/internal/telemetry"
)

// ResponseCache is the composed cache: the store's full API plus lifecycle
// of its workers.
type ResponseCache struct {
	*cache.Store
	sweep     sweeper.Sweeper
	telemeter telemetry.Logger
	persister *persistence.Persister
	cls       context.CancelFunc
}

var _ io.Closer = (*ResponseCache)(nil)

// NewResponseCache builds the store, restores a snapshot when one is
// configured and starts the background workers.
func NewResponseCache(ctx context.Context, cfg *config.CacheCfg, clk clock.Clock, logger *slog.Logger) *ResponseCache {
	ctx, cancel := context.WithCancel(ctx)

	store := cache.New(cfg, clk, logger)
	sweep := sweeper.New(ctx, cfg, clk, logger, store)
	telemeter := telemetry.New(ctx, cfg, clk, logger, store, sweep)

	var persister *persistence.Persister
	if cfg.Snapshot.Enabled() {
		persister = persistence.New(cfg.Snapshot.Path, cfg.Snapshot.Interval.Std(), store, clk)
		persister.Load()
		go persister.Run(ctx)
	}

	return &ResponseCache{
		Store:     store,
		sweep:     sweep,
		telemeter: telemeter,
		persister: persister,
		cls:       cancel,
	}
}

// Close stops the workers and, when snapshotting is enabled, writes a final
// snapshot so a clean shutdown never loses the cache.
func (c *ResponseCache) Close() error {
	c.cls()
	_ = c.telemeter.Close()
	_ = c.sweep.Close()
	if c.persister != nil {
		return c.persister.Save()
	}
	return nil
}
