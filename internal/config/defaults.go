package config

import (
	_ "embed"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/nird.yaml
var defaultYAML []byte

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultYAML
}

// Default returns the embedded configuration.
func Default() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		return fallback()
	}
	cfg.Source = "embedded"
	return cfg
}

// fallback mirrors defaults/nird.yaml for the case the embed is unreadable.
func fallback() Config {
	return Config{
		TickRate:          60,
		DBPath:            "~/.nird/nird.db",
		Difficulty:        "beginner",
		LogFile:           "~/.nird/nird.log",
		LogLevel:          "info",
		ScreenshotDir:     "~/.nird/screenshots",
		MilestoneDuration: 1500 * time.Millisecond,
		BurstDuration:     time.Second,
		Activation: Activation{
			Required:     true,
			Code:         []string{"U", "P", "U", "P", "D", "O", "W", "N"},
			HintDuration: time.Second,
		},
		SSH: SSHConfig{
			Address:     ":23234",
			HostKeyPath: "~/.nird/host_key",
			IdleTimeout: 30 * time.Minute,
		},
		Spectate: SpectateConfig{
			Enabled:           true,
			Address:           ":8089",
			CORSOrigins:       []string{"*"},
			RequestsPerSecond: 10,
			Burst:             20,
		},
		Source: "builtin",
	}
}
