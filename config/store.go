package config

import "log/slog"

const defaultDSN = "plexcord.db"

type StoreCfg struct {
	// DSN is the SQLite database path or URI.
	DSN string `yaml:"dsn"`
}

func (cfg *StoreCfg) adjust(logger *slog.Logger) {
	if cfg.DSN == "" {
		logger.Warn("store.dsn empty, using default", "default", defaultDSN)
		cfg.DSN = defaultDSN
	}
}

type HTTPCfg struct {
	// Addr the status server binds to, e.g. ":8080".
	Addr string `yaml:"addr"`
}

func (cfg *HTTPCfg) Enabled() bool {
	return cfg != nil && cfg.Addr != ""
}

func (cfg *HTTPCfg) adjust(_ *slog.Logger) {}
