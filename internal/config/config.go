// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr      string
	DBPath          string
	VaultDir        string
	RateWindow      time.Duration
	RateMax         int
	LogRequests     bool
	PersistLogs     bool
	DefaultPassword string
}

// Load reads configuration from environment variables and returns a validated
// Config. All variables are optional and fall back to defaults:
// LOCKFIND_LISTEN_ADDR (127.0.0.1:27750), LOCKFIND_DB_PATH (lockfind.db),
// LOCKFIND_VAULT_DIR (current directory), LOCKFIND_RATE_WINDOW (60s),
// LOCKFIND_RATE_MAX (100), LOCKFIND_LOG_REQUESTS (true),
// LOCKFIND_PERSIST_LOGS (false), LOCKFIND_DEFAULT_PASSWORD (built-in default).
func Load() (*Config, error) {
	listenAddr := "127.0.0.1:27750"
	if v, ok := os.LookupEnv("LOCKFIND_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "lockfind.db"
	if v, ok := os.LookupEnv("LOCKFIND_DB_PATH"); ok {
		dbPath = v
	}

	vaultDir := "."
	if v, ok := os.LookupEnv("LOCKFIND_VAULT_DIR"); ok {
		vaultDir = v
	}

	rateWindow := time.Minute
	if v, ok := os.LookupEnv("LOCKFIND_RATE_WINDOW"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("LOCKFIND_RATE_WINDOW has invalid duration %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("LOCKFIND_RATE_WINDOW must be positive, got %q", v)
		}
		rateWindow = parsed
	}

	rateMax := 100
	if v, ok := os.LookupEnv("LOCKFIND_RATE_MAX"); ok {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("LOCKFIND_RATE_MAX has invalid value %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("LOCKFIND_RATE_MAX must be positive, got %d", parsed)
		}
		rateMax = parsed
	}

	logRequests := true
	if v, ok := os.LookupEnv("LOCKFIND_LOG_REQUESTS"); ok {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("LOCKFIND_LOG_REQUESTS has invalid value %q: %w", v, err)
		}
		logRequests = parsed
	}

	persistLogs := false
	if v, ok := os.LookupEnv("LOCKFIND_PERSIST_LOGS"); ok {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("LOCKFIND_PERSIST_LOGS has invalid value %q: %w", v, err)
		}
		persistLogs = parsed
	}

	// Empty means the gateway's built-in default password.
	defaultPassword := os.Getenv("LOCKFIND_DEFAULT_PASSWORD")

	return &Config{
		ListenAddr:      listenAddr,
		DBPath:          dbPath,
		VaultDir:        vaultDir,
		RateWindow:      rateWindow,
		RateMax:         rateMax,
		LogRequests:     logRequests,
		PersistLogs:     persistLogs,
		DefaultPassword: defaultPassword,
	}, nil
}
