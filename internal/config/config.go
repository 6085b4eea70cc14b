// Package config loads runtime settings from the environment, with an
// optional .env file for development.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the resolved runtime configuration. A single fixed user owns all
// data on this device; multi-user access goes through the remote store, not
// through this process.
type Config struct {
	DataDir string

	// MongoURI empty means the remote store is disabled and the app runs
	// purely local.
	MongoURI      string
	MongoDatabase string

	UserID   string
	LogLevel string
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first if present; real environment variables win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		DataDir:       envOr("MEDMINDER_DATA_DIR", "./data"),
		MongoURI:      strings.TrimSpace(os.Getenv("MONGODB_URI")),
		MongoDatabase: envOr("MONGODB_DATABASE", "medminder"),
		UserID:        envOr("MEDMINDER_USER", "default"),
		LogLevel:      envOr("LOG_LEVEL", "info"),
	}
}

// RemoteEnabled reports whether a remote store endpoint is configured.
func (c Config) RemoteEnabled() bool {
	return c.MongoURI != ""
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
