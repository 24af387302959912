package config

import (
	"log/slog"
	"time"
)

const (
	// defaultMaxDirectDelay is the longest delay armed as a single native
	// timer. Longer waits fall back to periodic polling so a clock jump or
	// runtime timer limit cannot silently drop a fire.
	defaultMaxDirectDelay = 24 * time.Hour

	// defaultPollInterval bounds staleness for long-delay reminders.
	defaultPollInterval = time.Minute
)

type RemindersCfg struct {
	// MaxDirectDelay is the threshold between a direct one-shot timer and
	// a polling timer.
	MaxDirectDelay Duration `yaml:"max_direct_delay"`

	// PollInterval is the wake-up period of polling timers.
	PollInterval Duration `yaml:"poll_interval"`
}

func (cfg *RemindersCfg) adjust(logger *slog.Logger) {
	if cfg.MaxDirectDelay <= 0 {
		cfg.MaxDirectDelay = Duration(defaultMaxDirectDelay)
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = Duration(defaultPollInterval)
	} else if cfg.PollInterval > cfg.MaxDirectDelay {
		logger.Warn("reminders.poll_interval exceeds max_direct_delay, using default", "got", cfg.PollInterval.String(), "default", defaultPollInterval.String())
		cfg.PollInterval = Duration(defaultPollInterval)
	}
}
