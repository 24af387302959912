package telemetry

import (
	"context"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/plexcord/plexcord/config"
	"github.com/plexcord/plexcord/internal/cache"
	"github.com/plexcord/plexcord/internal/shared/bytes"
	"github.com/plexcord/plexcord/internal/sweeper"
)

type Logger interface {
	Interval() time.Duration
	Close() error
}

type Logs struct {
	ctx      context.Context
	cancel   context.CancelFunc
	cfg      *config.CacheCfg
	clk      clock.Clock
	logger   *slog.Logger
	cache    *cache.Store
	sweeper  sweeper.Sweeper
	interval time.Duration
}

func New(
	ctx context.Context,
	cfg *config.CacheCfg,
	clk clock.Clock,
	logger *slog.Logger,
	cache *cache.Store,
	sweeper sweeper.Sweeper,
) *Logs {
	ctx, cancel := context.WithCancel(ctx)
	return (&Logs{
		ctx:      ctx,
		cancel:   cancel,
		cfg:      cfg,
		clk:      clk,
		logger:   logger,
		cache:    cache,
		sweeper:  sweeper,
		interval: cfg.StatLogInterval.Std(),
	}).run()
}

func (l *Logs) Interval() time.Duration {
	return l.interval
}

func (l *Logs) Close() error {
	l.cancel()
	return nil
}

func (l *Logs) run() *Logs {
	if l.cfg != nil && l.cfg.StatLogsEnabled {
		go l.loop()
	}
	return l
}

func (l *Logs) loop() {
	ticker := l.clk.Ticker(l.interval)
	defer ticker.Stop()

	maxMem := bytes.FmtMem(l.cfg.MaxMemoryBytes)

	s := newSampler(l.cache, l.sweeper)
	prev := s.snapshot()

	for {
		select {
		case <-l.ctx.Done():
			return

		case <-ticker.C:
			cur := s.snapshot()
			d := deltaSnapshot(prev, cur)
			prev = cur

			common := []any{"interval", l.interval.String()}

			l.logger.Info("cache_activity",
				append(common,
					"hits", d.hits,
					"misses", d.misses,
					"sets", d.sets,
					"deletes", d.deletes,
					"evictions", d.evictions,
				)...,
			)

			if l.cfg.SweepInterval > 0 {
				l.logger.Info("ttl_sweeper",
					append(common,
						"scans", d.sweepScans,
						"removed", d.sweepRemoved,
					)...,
				)
			}

			st := l.cache.Stats()
			l.logger.Info("storage",
				append(common,
					"size", st.MemoryUsageFormatted,
					"entries", st.EntryCount,
					"hit_rate", st.HitRate,
					"max_mem", maxMem,
					"max_entries", l.cfg.MaxEntries,
				)...,
			)
		}
	}
}
