package config

// DiscordCfg configures the Discord gateway session.
type DiscordCfg struct {
	Token string `yaml:"token"`

	// Prefix for text commands, e.g. "!".
	Prefix string `yaml:"prefix"`
}

func (cfg *DiscordCfg) Enabled() bool {
	return cfg != nil && cfg.Token != ""
}
