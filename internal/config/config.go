// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Store drivers.
const (
	DriverBadger = "badger"
	DriverSQLite = "sqlite"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Metadata  MetadataConfig
	Store     StoreConfig
	Server    ServerConfig
	Auth      AuthConfig
	Library   LibraryConfig
	Scheduler SchedulerConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// MetadataConfig holds the data directory.
type MetadataConfig struct {
	BasePath string
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver string // badger (default) or sqlite
	Path   string // Defaults to {metadata}/catalog.badger or {metadata}/catalog.sqlite
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
	CORSOrigins  []string      // Allowed origins (default: *)
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// PASETO v4 symmetric key for access tokens (32 bytes)
	AccessTokenKey      []byte
	AccessTokenDuration time.Duration // e.g., 24h
	// Login attempts allowed per minute per client, with burst.
	LoginRatePerMinute int
	LoginBurst         int
}

// LibraryConfig holds catalog behaviour.
type LibraryConfig struct {
	LoanPeriod   time.Duration // Borrowed books are due this long after borrowing (default: 168h)
	SeedDefaults bool          // Write the built-in catalog on first start (default: true)
}

// SchedulerConfig holds background job schedules.
type SchedulerConfig struct {
	// OverdueSweep is a cron spec for the overdue notification sweep.
	// Empty disables the sweep.
	OverdueSweep string
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig(args []string) (*Config, error) {
	fs := flag.NewFlagSet("catalog-server", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	metadataPath := fs.String("metadata-path", "", "Base path for data storage")

	storeDriver := fs.String("store-driver", "", "Store backend: badger or sqlite (default: badger)")
	storePath := fs.String("store-path", "", "Path to the database")

	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := fs.String("cors-origins", "", "Comma-separated allowed CORS origins (default: *)")

	accessTokenDuration := fs.String("access-token-duration", "", "Access token lifetime (e.g., 24h)")
	loginRate := fs.String("login-rate", "", "Login attempts per minute per client (default: 10)")

	loanPeriod := fs.String("loan-period", "", "Loan period for borrowed books (default: 168h)")
	seedDefaults := fs.String("seed-defaults", "", "Write the default catalog on first start (default: true)")
	overdueSweep := fs.String("overdue-sweep", "", "Cron spec for the overdue sweep (default: @hourly)")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Metadata: MetadataConfig{
			BasePath: getConfigValue(*metadataPath, "METADATA_PATH", ""),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getConfigValue(*storeDriver, "STORE_DRIVER", DriverBadger)),
			Path:   getConfigValue(*storePath, "STORE_PATH", ""),
		},
		Server: ServerConfig{
			Port:        getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			CORSOrigins: splitList(getConfigValue(*corsOrigins, "CORS_ORIGINS", "*")),
		},
		Auth: AuthConfig{
			AccessTokenKey:     nil, // Set by auth.LoadOrGenerateKey at startup
			LoginRatePerMinute: getIntConfigValue(*loginRate, "LOGIN_RATE", 10),
			LoginBurst:         getIntConfigValue("", "LOGIN_BURST", 5),
		},
		Library: LibraryConfig{
			SeedDefaults: getBoolConfigValue(*seedDefaults, "SEED_DEFAULTS", true),
		},
		Scheduler: SchedulerConfig{
			OverdueSweep: getConfigValue(*overdueSweep, "OVERDUE_SWEEP", "@hourly"),
		},
	}

	durations := []struct {
		flagValue, envKey, defaultValue string
		dest                            *time.Duration
	}{
		{*accessTokenDuration, "ACCESS_TOKEN_DURATION", "24h", &cfg.Auth.AccessTokenDuration},
		{*readTimeout, "SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s", &cfg.Server.WriteTimeout},
		{*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
		{*loanPeriod, "LOAN_PERIOD", "168h", &cfg.Library.LoanPeriod},
	}
	for _, d := range durations {
		v, err := getDurationConfigValue(d.flagValue, d.envKey, d.defaultValue)
		if err != nil {
			return nil, err
		}
		*d.dest = v
	}

	if err := cfg.expandMetadataPath(); err != nil {
		return nil, fmt.Errorf("invalid metadata path: %w", err)
	}
	if err := cfg.expandStorePath(); err != nil {
		return nil, fmt.Errorf("invalid store path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Metadata.BasePath == "" {
		return errors.New("metadata base path cannot be empty after expansion")
	}

	switch c.Store.Driver {
	case DriverBadger, DriverSQLite:
	default:
		return fmt.Errorf("invalid store driver: %s (must be badger or sqlite)", c.Store.Driver)
	}

	if c.Library.LoanPeriod <= 0 {
		return fmt.Errorf("loan period must be positive, got %s", c.Library.LoanPeriod)
	}

	if c.Auth.LoginRatePerMinute <= 0 || c.Auth.LoginBurst <= 0 {
		return errors.New("login rate and burst must be positive")
	}

	if c.Scheduler.OverdueSweep != "" {
		if _, err := cron.ParseStandard(c.Scheduler.OverdueSweep); err != nil {
			return fmt.Errorf("invalid overdue sweep schedule %q: %w", c.Scheduler.OverdueSweep, err)
		}
	}

	return nil
}

// IsProduction reports whether the server runs in production.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned as is.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandMetadataPath defaults the data directory to ~/CatalogServer/data.
func (c *Config) expandMetadataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "CatalogServer", "data")

	expanded, err := expandPath(c.Metadata.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Metadata.BasePath = expanded
	return nil
}

// expandStorePath places the database inside the data directory unless an
// explicit path was given.
func (c *Config) expandStorePath() error {
	name := "catalog.badger"
	if c.Store.Driver == DriverSQLite {
		name = "catalog.sqlite"
	}

	expanded, err := expandPath(c.Store.Path, filepath.Join(c.Metadata.BasePath, name))
	if err != nil {
		return err
	}
	c.Store.Path = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// getDurationConfigValue parses a duration from flag, env var, or default.
func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, strValue, err)
	}
	return d, nil
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Env vars already set take precedence over the file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
