// Package config provides YAML-based configuration loading for nird.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/nird-snake/internal/games/snake"
)

// Config is the full application configuration.
type Config struct {
	TickRate          int            `yaml:"tick_rate"`
	DBPath            string         `yaml:"db_path"`
	Difficulty        string         `yaml:"difficulty"`
	LogFile           string         `yaml:"log_file"`
	LogLevel          string         `yaml:"log_level"`
	ScreenshotDir     string         `yaml:"screenshot_dir"`
	MilestoneDuration time.Duration  `yaml:"milestone_duration"`
	BurstDuration     time.Duration  `yaml:"burst_duration"`
	Activation        Activation     `yaml:"activation"`
	SSH               SSHConfig      `yaml:"ssh"`
	Spectate          SpectateConfig `yaml:"spectate"`

	// Source is the file the config was read from, or "embedded".
	Source string `yaml:"-"`
}

// Activation controls the dormant mode that waits for the secret code.
type Activation struct {
	Required     bool          `yaml:"required"`
	Code         []string      `yaml:"code"`
	HintDuration time.Duration `yaml:"hint_duration"`
}

// SSHConfig configures `nird serve`.
type SSHConfig struct {
	Address     string        `yaml:"address"`
	HostKeyPath string        `yaml:"host_key_path"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// SpectateConfig configures the spectator HTTP API.
type SpectateConfig struct {
	Enabled           bool     `yaml:"enabled"`
	Address           string   `yaml:"address"`
	CORSOrigins       []string `yaml:"cors_origins"`
	RequestsPerSecond float64  `yaml:"requests_per_second"`
	Burst             int      `yaml:"burst"`
}

// Validate checks ranges and names.
func (c Config) Validate() error {
	var errs []error
	if c.TickRate < 1 || c.TickRate > 240 {
		errs = append(errs, fmt.Errorf("tick_rate %d out of range 1-240", c.TickRate))
	}
	if _, err := snake.LookupDifficulty(c.Difficulty); err != nil {
		errs = append(errs, err)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.MilestoneDuration < 0 || c.BurstDuration < 0 || c.Activation.HintDuration < 0 {
		errs = append(errs, errors.New("durations must not be negative"))
	}
	if c.Activation.Required && len(c.Activation.Code) == 0 {
		errs = append(errs, errors.New("activation.code is empty but activation is required"))
	}
	if c.Spectate.Enabled {
		if c.Spectate.RequestsPerSecond <= 0 {
			errs = append(errs, errors.New("spectate.requests_per_second must be positive"))
		}
		if c.Spectate.Burst < 1 {
			errs = append(errs, errors.New("spectate.burst must be at least 1"))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// StartDifficulty returns the preset named by the difficulty key.
func (c Config) StartDifficulty() (snake.Difficulty, error) {
	return snake.LookupDifficulty(c.Difficulty)
}

// Level returns the parsed log level, falling back to info.
func (c Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
