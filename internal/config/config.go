package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// DriverSQLite stores the registry in a local sqlite file.
	DriverSQLite = "sqlite"
	// DriverPostgres stores the registry in a PostgreSQL database.
	DriverPostgres = "postgres"
)

// Config holds runtime configuration values for the tracker.
type Config struct {
	AppName         string
	AppEnv          string
	AppPort         string
	LogLevel        string
	DatabaseDriver  string
	DatabasePath    string
	DatabaseURL     string
	RedisURL        string
	NATSURL         string
	EventsChannel   string
	SeedSamples     bool
	ExportPath      string
	BackupPath      string
	RateLimitMax    int
	RateLimitWindow time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("AIVT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Academic Integrity Violation Tracker")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "aivt_data.db")
	v.SetDefault("events.channel", "aivt:cases")
	v.SetDefault("seed.samples", true)
	v.SetDefault("export.path", "aivt_data.txt")
	v.SetDefault("backup.path", "aivt_data_backup.db")
	v.SetDefault("ratelimit.max", 30)
	v.SetDefault("ratelimit.window", "1m")

	window, err := time.ParseDuration(v.GetString("ratelimit.window"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid rate limit window: %w", err)
	}

	cfg := Config{
		AppName:         v.GetString("app.name"),
		AppEnv:          v.GetString("app.env"),
		AppPort:         v.GetString("app.port"),
		LogLevel:        strings.ToLower(v.GetString("log.level")),
		DatabaseDriver:  strings.ToLower(v.GetString("database.driver")),
		DatabasePath:    v.GetString("database.path"),
		DatabaseURL:     v.GetString("database.url"),
		RedisURL:        v.GetString("redis.url"),
		NATSURL:         v.GetString("nats.url"),
		EventsChannel:   v.GetString("events.channel"),
		SeedSamples:     v.GetBool("seed.samples"),
		ExportPath:      v.GetString("export.path"),
		BackupPath:      v.GetString("backup.path"),
		RateLimitMax:    v.GetInt("ratelimit.max"),
		RateLimitWindow: window,
	}

	switch cfg.DatabaseDriver {
	case DriverSQLite:
		if cfg.DatabasePath == "" {
			return Config{}, fmt.Errorf("database path must be provided for the sqlite driver")
		}
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("database url must be provided for the postgres driver")
		}
	default:
		return Config{}, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	if cfg.RateLimitMax <= 0 {
		cfg.RateLimitMax = 30
	}

	return cfg, nil
}

// StoreLocation returns the file backing the store, or an empty string when the
// backend is not file based.
func (c Config) StoreLocation() string {
	if c.DatabaseDriver == DriverSQLite {
		return c.DatabasePath
	}
	return ""
}
