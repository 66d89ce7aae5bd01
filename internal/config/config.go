package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config captures the workspace configuration read from coverbuild.yaml.
type Config struct {
	Version int `yaml:"version"`
	// Switches lists the compiler packages to keep a build switch for,
	// in "name.version" form.
	Switches []string  `yaml:"switches"`
	Git      GitConfig `yaml:"git"`
}

// GitConfig selects the version-control backend binary and the committer
// identity stamped on every checkpoint.
type GitConfig struct {
	Binary         string `yaml:"binary"`
	CommitterName  string `yaml:"committer_name"`
	CommitterEmail string `yaml:"committer_email"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Version: 1,
		Git: GitConfig{
			Binary:         "git",
			CommitterName:  "coverbuild",
			CommitterEmail: "coverbuild@localhost",
		},
	}
}

// Load reads the YAML configuration from disk if it exists, otherwise
// returns the default configuration.
func Load(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults backfills fields the YAML omits.
func (c *Config) ApplyDefaults() {
	defaults := Default()

	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if c.Git.Binary == "" {
		c.Git.Binary = defaults.Git.Binary
	}
	if c.Git.CommitterName == "" {
		c.Git.CommitterName = defaults.Git.CommitterName
	}
	if c.Git.CommitterEmail == "" {
		c.Git.CommitterEmail = defaults.Git.CommitterEmail
	}
}
