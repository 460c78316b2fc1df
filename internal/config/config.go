// Package config loads server settings from an optional YAML file,
// overlaid by environment variables. A .env file, if present, is read
// into the environment first, so env always wins over the file.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Addr is the listen address (default "0.0.0.0:5000").
	Addr string `yaml:"addr"`

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string `yaml:"database_url"`

	// SessionSecret signs the session cookies. Required outside dev.
	SessionSecret string `yaml:"session_secret"`

	// LogFile is the rotating log destination; empty logs to stderr.
	LogFile string `yaml:"log_file"`

	// UploadDir is where project images are stored (default "uploads").
	UploadDir string `yaml:"upload_dir"`

	// ModerationURL is the optional moderation service endpoint for new
	// project submissions. Empty disables moderation.
	ModerationURL string `yaml:"moderation_url"`
}

// Load reads configPath (if it exists), then applies environment
// overrides. A missing config file is not an error; a missing
// DATABASE_URL is.
func Load(configPath string) (*Config, error) {
	// Dev convenience only; a missing .env is fine.
	_ = godotenv.Load()

	cfg := &Config{
		Addr:      "0.0.0.0:5000",
		UploadDir: "uploads",
	}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", configPath, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("read %s: %w", configPath, err)
		}
	}

	overlayEnv(cfg)

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = "dev-secret-change-in-production"
	}

	return cfg, nil
}

func overlayEnv(cfg *Config) {
	for env, dst := range map[string]*string{
		"ADDR":           &cfg.Addr,
		"DATABASE_URL":   &cfg.DatabaseURL,
		"SESSION_SECRET": &cfg.SessionSecret,
		"LOG_FILE":       &cfg.LogFile,
		"UPLOAD_DIR":     &cfg.UploadDir,
		"MODERATION_URL": &cfg.ModerationURL,
	} {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
}
