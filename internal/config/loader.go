package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LocalPath is the project-relative config file.
const LocalPath = "configs/nird.yaml"

// Load reads the configuration.
// Search order: customPath -> ~/.nird/config.yaml -> ./configs/nird.yaml -> embedded default.
// The chosen file is layered over the embedded default, so it only needs the
// keys it changes. A custom path that cannot be read is an error; the other
// locations are skipped when missing or invalid.
func Load(customPath string) (Config, error) {
	cfg := Default()

	if customPath != "" {
		path := ExpandPath(customPath)
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		cfg.Source = path
		return cfg, cfg.Validate()
	}

	for _, path := range []string{userConfigPath(), LocalPath} {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		candidate := Default()
		if err := yaml.Unmarshal(data, &candidate); err != nil {
			continue
		}
		if candidate.Validate() != nil {
			continue
		}
		candidate.Source = path
		return candidate, nil
	}

	return cfg, cfg.Validate()
}

// userConfigPath returns the path to the user config file, or empty if home is unavailable.
func userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".nird", "config.yaml")
}

// ExpandPath replaces a leading ~ with the home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
