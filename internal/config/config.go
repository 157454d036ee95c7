package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config captures the runtime configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Session  SessionConfig
	Settings Settings
}

// ServerConfig configures the HTTP server runtime behavior.
type ServerConfig struct {
	Addr string
}

// DatabaseConfig contains the database connection settings. URLs starting with postgres://
// select PostgreSQL; anything else is treated as a SQLite path or DSN.
type DatabaseConfig struct {
	URL             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	UseMock         bool
}

type LoggingConfig struct {
	Level string
}

// SessionConfig controls the operator session cookie.
type SessionConfig struct {
	Lifetime     time.Duration
	CookieName   string
	CookieDomain string
	CookieSecure bool
}

// Settings are operator preferences passed into formatting and costing calls.
type Settings struct {
	CurrencySymbol           string `yaml:"currency_symbol"`
	MoneyPlaces              int32  `yaml:"money_places"`
	DefaultTargetFoodCostPct string `yaml:"default_target_food_cost_pct"`
	RecentChangesLimit       int    `yaml:"recent_changes_limit"`
}

// DefaultSettings returns the settings used when no settings file is configured.
func DefaultSettings() Settings {
	return Settings{
		CurrencySymbol:           "$",
		MoneyPlaces:              2,
		DefaultTargetFoodCostPct: "0.30",
		RecentChangesLimit:       50,
	}
}

// TargetFoodCostPct parses the default target as a fraction.
func (s Settings) TargetFoodCostPct() (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(s.DefaultTargetFoodCostPct))
	if err != nil {
		return decimal.Zero, fmt.Errorf("default target food cost: %w", err)
	}
	if value.IsNegative() || value.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("default target food cost %s must be a fraction in [0,1)", value)
	}
	return value, nil
}

// LoadDotEnv populates the environment from .env style files. Missing files are ignored and
// variables already present in the environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// Load inspects the environment and builds a Config value.
func Load() (Config, error) {
	cfg := Config{}

	cfg.Server = ServerConfig{
		Addr: firstNonEmpty(
			os.Getenv("SERVER_ADDR"),
			os.Getenv("ADDR"),
			":8080",
		),
	}

	cfg.Database = DatabaseConfig{
		URL: firstNonEmpty(
			os.Getenv("DATABASE_URL"),
			os.Getenv("DB_URL"),
			"costchef.db",
		),
		MaxIdleConns:    parseIntWithDefault(os.Getenv("DATABASE_MAX_IDLE_CONNS"), 0),
		MaxOpenConns:    parseIntWithDefault(os.Getenv("DATABASE_MAX_OPEN_CONNS"), 0),
		ConnMaxLifetime: parseDurationWithDefault(os.Getenv("DATABASE_CONN_MAX_LIFETIME"), 0),
		ConnMaxIdleTime: parseDurationWithDefault(os.Getenv("DATABASE_CONN_MAX_IDLE_TIME"), 0),
		UseMock:         parseBoolWithDefault(os.Getenv("DATABASE_USE_MOCK"), false),
	}

	cfg.Logging = LoggingConfig{
		Level: firstNonEmpty(os.Getenv("LOG_LEVEL"), "info"),
	}

	cfg.Session = SessionConfig{
		Lifetime:     parseDurationWithDefault(os.Getenv("SESSION_LIFETIME"), 12*time.Hour),
		CookieName:   firstNonEmpty(os.Getenv("SESSION_COOKIE_NAME"), "costchef_session"),
		CookieDomain: strings.TrimSpace(os.Getenv("SESSION_COOKIE_DOMAIN")),
		CookieSecure: parseBoolWithDefault(os.Getenv("SESSION_COOKIE_SECURE"), false),
	}

	settings, err := LoadSettings(os.Getenv("COSTCHEF_SETTINGS"))
	if err != nil {
		return Config{}, err
	}
	cfg.Settings = settings

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return Config{}, fmt.Errorf("server address must not be empty")
	}

	return cfg, nil
}

// LoadSettings reads a YAML settings file over the defaults. An empty path yields the defaults.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()
	if strings.TrimSpace(path) == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("parse settings %s: %w", path, err)
	}

	if settings.MoneyPlaces < 0 || settings.MoneyPlaces > 6 {
		return Settings{}, fmt.Errorf("money_places %d out of range", settings.MoneyPlaces)
	}
	if settings.RecentChangesLimit <= 0 {
		settings.RecentChangesLimit = DefaultSettings().RecentChangesLimit
	}
	if _, err := settings.TargetFoodCostPct(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func parseIntWithDefault(value string, def int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return parsed
}

func parseDurationWithDefault(value string, def time.Duration) time.Duration {
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return parsed
}

func parseBoolWithDefault(value string, def bool) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return parsed
}
