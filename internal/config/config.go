package config

import (
	"fmt"
	"os"
	"strconv"
)

// DefaultMaxBodyBytes caps JSON request bodies at 10MB.
const DefaultMaxBodyBytes = 10 << 20

type Config struct {
	MongoURI     string
	Database     string
	APIKey       string
	Port         string
	MaxBodyBytes int64
}

// Load reads the configuration from the process environment. API_KEY has no
// default: a gateway without a secret would accept every caller, so Load
// refuses to produce a config without one.
func Load() (Config, error) {
	cfg := Config{
		MongoURI:     getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		Database:     getEnv("MONGODB_DB", "docbridge"),
		APIKey:       os.Getenv("API_KEY"),
		Port:         getEnv("PORT", "8080"),
		MaxBodyBytes: DefaultMaxBodyBytes,
	}

	if cfg.APIKey == "" {
		return Config{}, fmt.Errorf("API_KEY must be set")
	}

	if v := os.Getenv("MAX_BODY_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("MAX_BODY_BYTES %q is not a positive integer", v)
		}
		cfg.MaxBodyBytes = n
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
