// Package config loads the server configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the studylenses.yaml document. Flags override file values;
// every field has a workable default so the file is optional.
type Config struct {
	// HTTP is the listen address, e.g. "localhost:8080".
	HTTP string `yaml:"http"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// Snapshot is the path of a static snapshot document to serve at startup.
	Snapshot string `yaml:"snapshot"`
	// GitDir is a local git checkout to serve at startup (alternative to Snapshot).
	GitDir string `yaml:"git_dir"`
	// GitHubToken authenticates GitHub API requests (optional, raises rate limits).
	GitHubToken string `yaml:"github_token"`
	// JWTSecret signs instructor session tokens. Required for edit endpoints.
	JWTSecret string `yaml:"jwt_secret"`
	// InstructorPasswordHash is the bcrypt hash the login endpoint checks.
	// Edit endpoints stay disabled while it is empty.
	InstructorPasswordHash string `yaml:"instructor_password_hash"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		HTTP:     "localhost:8080",
		LogLevel: "info",
	}
}

// Load reads a YAML configuration file over the defaults. A missing file is
// not an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from a flag, not user input
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}
