package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Config groups configuration of all bot subsystems.
type Config struct {
	Cache      *CacheCfg      `yaml:"cache"`
	Reminders  *RemindersCfg  `yaml:"reminders"`
	Store      *StoreCfg      `yaml:"store"`
	Perplexity *PerplexityCfg `yaml:"perplexity"`
	Discord    *DiscordCfg    `yaml:"discord"`
	HTTP       *HTTPCfg       `yaml:"http"`
}

// Adjust substitutes documented defaults for missing or malformed values.
// A bad value is never fatal: it is replaced and reported through the logger.
func (cfg *Config) Adjust(logger *slog.Logger) {
	if cfg.Cache == nil {
		cfg.Cache = &CacheCfg{}
	}
	cfg.Cache.adjust(logger)

	if cfg.Reminders == nil {
		cfg.Reminders = &RemindersCfg{}
	}
	cfg.Reminders.adjust(logger)

	if cfg.Store == nil {
		cfg.Store = &StoreCfg{}
	}
	cfg.Store.adjust(logger)

	if cfg.Perplexity != nil {
		cfg.Perplexity.adjust(logger)
	}
	if cfg.HTTP != nil {
		cfg.HTTP.adjust(logger)
	}
}

func Load(path string, logger *slog.Logger) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config yaml file %s: %w", path, err)
	}

	var cfg *Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml from %s: %w", path, err)
	}
	cfg.Adjust(logger)

	return cfg, nil
}
