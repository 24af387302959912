// Command plexcord runs the Discord assistant: the cached Perplexity proxy,
// the reminder scheduler and the optional HTTP status API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/plexcord/plexcord"
	"github.com/plexcord/plexcord/config"
	"github.com/plexcord/plexcord/internal/bot"
	"github.com/plexcord/plexcord/internal/httpapi"
	"github.com/plexcord/plexcord/internal/perplexity"
	"github.com/plexcord/plexcord/internal/scheduler"
	"github.com/plexcord/plexcord/internal/store"
	"github.com/plexcord/plexcord/internal/timer"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "plexcord:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "plexcord.yaml", "path to the yaml config")
		debug      = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(*configPath, logger)
	if err != nil {
		return err
	}

	if !cfg.Discord.Enabled() {
		return fmt.Errorf("discord.token is required")
	}
	if !cfg.Perplexity.Enabled() {
		return fmt.Errorf("perplexity.api_key is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clk := clock.New()

	db, err := store.New(ctx, cfg.Store.DSN, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	responseCache := plexcord.NewResponseCache(ctx, cfg.Cache, clk, logger)
	defer responseCache.Close()

	timers := timer.New(clk, cfg.Reminders.MaxDirectDelay.Std(), cfg.Reminders.PollInterval.Std(), logger)
	sched := scheduler.New(ctx, db, timers, clk, logger)

	llm := perplexity.New(ctx, cfg.Perplexity, responseCache.Store, db, logger)

	discord, err := bot.New(cfg.Discord, llm, sched, responseCache.Store, db, logger)
	if err != nil {
		return err
	}

	// Subscribe happens inside bot.New, so past-due reminders completed
	// during the load are the only events that can be missed. Those were
	// already due before this process existed.
	if err = sched.LoadAndArmAll(ctx); err != nil {
		return err
	}

	if err = discord.Start(); err != nil {
		return err
	}
	defer discord.Close()

	var api *httpapi.Server
	if cfg.HTTP.Enabled() {
		api = httpapi.New(cfg.HTTP.Addr, responseCache.Store, logger)
		go func() {
			if serr := api.Start(); serr != nil {
				logger.Error("http api", "err", serr)
			}
		}()
	}

	logger.Info("plexcord running")
	<-ctx.Done()
	logger.Info("shutting down")

	sched.Shutdown()
	if api != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = api.Shutdown(shutdownCtx)
	}
	return nil
}
