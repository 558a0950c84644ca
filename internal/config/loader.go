package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures environment driven configuration values for the meetsync
// service.
type Config struct {
	HTTPPort       int
	SQLiteDSN      string
	TokenTTL       time.Duration
	TokenPurgeSpec string
	CORSOrigins    []string
}

// Load parses configuration from a .env file (when present) and the process
// environment, with the environment taking precedence.
//
// Optional values fall back to defaults; values that are present but
// unparsable fail loading so a misconfigured service never starts half
// configured.
func Load() (Config, error) {
	// Missing .env is the normal production case.
	_ = godotenv.Load()

	cfg := Config{
		HTTPPort:       8080,
		SQLiteDSN:      "file:meetsync.db?_pragma=foreign_keys(1)",
		TokenTTL:       30 * 24 * time.Hour,
		TokenPurgeSpec: "@hourly",
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("MEETSYNC_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "MEETSYNC_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("MEETSYNC_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if ttlValue := strings.TrimSpace(os.Getenv("MEETSYNC_TOKEN_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "MEETSYNC_TOKEN_TTL")
		} else {
			cfg.TokenTTL = ttl
		}
	}

	if spec := strings.TrimSpace(os.Getenv("MEETSYNC_TOKEN_PURGE_SPEC")); spec != "" {
		cfg.TokenPurgeSpec = spec
	}

	if origins := strings.TrimSpace(os.Getenv("MEETSYNC_CORS_ORIGINS")); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
			}
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
