// Package config handles loading application configuration from environment
// variables. All config is centralized here so no other package reads env
// vars directly. Sensible defaults are provided for development.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Config holds all application configuration. Populated from environment
// variables at startup. Passed to other packages via dependency injection.
type Config struct {
	// Env is the runtime environment: "development" or "production".
	Env string

	// Port is the HTTP listen port (default: 8080).
	Port int

	// BaseURL is the public-facing URL used for links and redirects.
	BaseURL string

	// LogLevel controls log verbosity: "debug", "info", "warn", "error".
	// Empty means the environment default.
	LogLevel string

	// MigrationsPath is the directory holding the SQL migration files.
	MigrationsPath string

	// Database holds MariaDB connection settings.
	Database DatabaseConfig

	// Redis holds Redis connection settings.
	Redis RedisConfig

	// Drafts holds settings for in-progress meeting forms.
	Drafts DraftConfig

	// HTTP holds reverse proxy, CORS and rate limit settings.
	HTTP HTTPConfig

	// Meetings holds the meeting creation rules. Defaults may be overridden
	// by the YAML file named in MEETINGS_OPTIONS_FILE.
	Meetings MeetingsConfig
}

// DatabaseConfig holds MariaDB connection parameters. Individual fields
// (Host, User, Password, Name) are read from separate env vars. If
// DATABASE_URL is set, it takes precedence over the individual fields.
type DatabaseConfig struct {
	// Host is the MariaDB address in host:port format (default: "localhost:3306").
	// If no port is specified, 3306 is appended automatically.
	Host string

	User     string
	Password string
	Name     string

	// dsnOverride is set when DATABASE_URL is provided, bypassing individual fields.
	dsnOverride string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN returns the go-sql-driver/mysql connection string. If DATABASE_URL was
// set, it is returned as-is. Otherwise the DSN is built from the individual
// fields using the driver's Config.FormatDSN() so special characters in
// passwords survive.
func (d DatabaseConfig) DSN() string {
	if d.dsnOverride != "" {
		return d.dsnOverride
	}
	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = ensurePort(d.Host, "3306")
	cfg.DBName = d.Name
	cfg.ParseTime = true
	// Migrations are applied as multi-statement files.
	cfg.MultiStatements = true
	return cfg.FormatDSN()
}

// ensurePort appends the default port if the host string doesn't include one.
func ensurePort(host, defaultPort string) string {
	_, _, err := net.SplitHostPort(host)
	if err != nil {
		return net.JoinHostPort(host, defaultPort)
	}
	return host
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	// URL is the Redis connection URL (e.g., "redis://localhost:6379").
	URL string
}

// DraftConfig holds settings for the Redis-backed creation drafts.
type DraftConfig struct {
	// TTL is how long an untouched draft survives. Every save refreshes it.
	TTL time.Duration
}

// HTTPConfig holds settings for the HTTP edge of the server.
type HTTPConfig struct {
	// TrustedProxies lists the CIDRs whose X-Forwarded-For / X-Real-IP
	// headers are believed when resolving the client IP.
	TrustedProxies []string

	// CORSOrigins lists the origins allowed to call /api/v1 from a browser.
	// Empty disables CORS headers entirely.
	CORSOrigins []string

	// CreateRateLimit is the number of meeting creations allowed per client
	// IP per CreateRateWindow.
	CreateRateLimit  int
	CreateRateWindow time.Duration
}

// Load reads configuration from environment variables with sensible defaults,
// then applies the meetings options file if one is configured.
func Load() (*Config, error) {
	cfg := &Config{
		Env:            getEnv("ENV", "development"),
		Port:           getEnvInt("PORT", 8080),
		BaseURL:        getEnv("BASE_URL", "http://localhost:8080"),
		LogLevel:       getEnv("LOG_LEVEL", ""),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "db/migrations"),

		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost:3306"),
			User:            getEnv("DB_USER", "meetingbrew"),
			Password:        getEnv("DB_PASSWORD", "meetingbrew"),
			Name:            getEnv("DB_NAME", "meetingbrew"),
			dsnOverride:     getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},

		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379"),
		},

		Drafts: DraftConfig{
			TTL: getEnvDuration("DRAFT_TTL", 24*time.Hour),
		},

		HTTP: HTTPConfig{
			TrustedProxies:   getEnvList("TRUSTED_PROXIES", []string{"127.0.0.1/8", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16", "::1/128"}),
			CORSOrigins:      getEnvList("API_CORS_ORIGINS", nil),
			CreateRateLimit:  getEnvInt("CREATE_RATE_LIMIT", 20),
			CreateRateWindow: getEnvDuration("CREATE_RATE_WINDOW", time.Minute),
		},

		Meetings: DefaultMeetingsConfig(),
	}

	if path := getEnv("MEETINGS_OPTIONS_FILE", ""); path != "" {
		opts, err := LoadMeetingsOptions(path, cfg.Meetings)
		if err != nil {
			return nil, fmt.Errorf("loading meetings options: %w", err)
		}
		cfg.Meetings = opts
	}

	if err := cfg.Meetings.Validate(); err != nil {
		return nil, err
	}
	if cfg.Drafts.TTL <= 0 {
		return nil, fmt.Errorf("DRAFT_TTL must be positive")
	}
	if cfg.HTTP.CreateRateLimit <= 0 || cfg.HTTP.CreateRateWindow <= 0 {
		return nil, fmt.Errorf("CREATE_RATE_LIMIT and CREATE_RATE_WINDOW must be positive")
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Env)
	return env == "development" || env == "dev"
}

// --- Helper functions for reading environment variables ---

// getEnv reads a string env var or returns the default.
func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// getEnvInt reads an integer env var or returns the default.
func getEnvInt(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvDuration reads a duration env var (e.g., "24h") or returns the default.
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// getEnvList reads a comma-separated env var, dropping empty items. An unset
// variable returns the default; a set but empty one returns nil.
func getEnvList(key string, defaultVal []string) []string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}
	var out []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
