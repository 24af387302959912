// Package sweeper runs the background TTL expiry pass over the cache store.
package sweeper

import (
	"context"
	"log/slog"

	"github.com/benbjohnson/clock"

	"github.com/plexcord/plexcord/config"
	"github.com/plexcord/plexcord/internal/cache"
)

type Sweeper interface {
	SweeperMetrics() (scans, removed int64)
	Close() error
}

type Worker struct {
	ctx      context.Context
	cancel   context.CancelFunc
	cfg      *config.CacheCfg
	clk      clock.Clock
	cache    *cache.Store
	logger   *slog.Logger
	counters *sweeperCounters
}

func New(
	ctx context.Context,
	cfg *config.CacheCfg,
	clk clock.Clock,
	logger *slog.Logger,
	cache *cache.Store,
) Sweeper {
	if cfg.SweepInterval <= 0 {
		return &NoOpSweeper{}
	}

	ctx, cancel := context.WithCancel(ctx)
	return (&Worker{
		ctx:      ctx,
		cancel:   cancel,
		cfg:      cfg,
		clk:      clk,
		cache:    cache,
		logger:   logger,
		counters: newSweeperCounters(),
	}).run()
}

func (w *Worker) SweeperMetrics() (scans, removed int64) {
	return w.counters.snapshot()
}

func (w *Worker) Close() error {
	w.cancel()
	return nil
}

func (w *Worker) run() *Worker {
	w.logger.Info("ttl sweeper is running", "interval", w.cfg.SweepInterval.String())

	go func() {
		defer w.logger.Info("ttl sweeper is stopped")

		ticker := w.clk.Ticker(w.cfg.SweepInterval.Std())
		defer ticker.Stop()

		for {
			select {
			case <-w.ctx.Done():
				return
			case <-ticker.C:
				w.counters.scans.Add(1)
				if removed := w.cache.SweepExpired(); removed > 0 {
					w.counters.removed.Add(int64(removed))
				}
			}
		}
	}()

	return w
}
