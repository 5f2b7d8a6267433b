package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	minSecretKeyLength = 32
)

var insecureSecretKeys = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
}

var ErrConfigNotFound = errors.New("config file not found")

type Config struct {
	Server struct {
		Port         string `yaml:"port"`
		CookieSecure bool   `yaml:"cookie_secure"`
	} `yaml:"server"`

	Auth struct {
		SecretKey           string        `yaml:"secret_key"`
		SessionTTL          time.Duration `yaml:"session_ttl"`
		RememberMeTTL       time.Duration `yaml:"remember_me_ttl"`
		LoginMaxAttempts    int           `yaml:"login_max_attempts"`
		LoginAttemptsWindow time.Duration `yaml:"login_attempts_window"`
	} `yaml:"auth"`

	Database struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"database"`

	Permissions struct {
		LegacyProjectAccess bool `yaml:"legacy_project_access"`
	} `yaml:"permissions"`

	Hierarchy struct {
		ArchiveCascadesTasks bool `yaml:"archive_cascades_tasks"`
	} `yaml:"hierarchy"`

	Sessions struct {
		SweepProbability float64 `yaml:"sweep_probability"`
	} `yaml:"sessions"`
}

// Default returns the configuration used when neither a file nor the
// environment says otherwise. The secret key has no default.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Port = "8080"
	cfg.Auth.SessionTTL = 7 * 24 * time.Hour
	cfg.Auth.RememberMeTTL = 30 * 24 * time.Hour
	cfg.Auth.LoginMaxAttempts = 8
	cfg.Auth.LoginAttemptsWindow = 15 * time.Minute
	cfg.Database.Driver = DriverSQLite
	cfg.Database.DSN = filepath.Join("data", "tempo.db")
	cfg.Permissions.LegacyProjectAccess = true
	cfg.Sessions.SweepProbability = 0.01
	return cfg
}

// Load reads the YAML file at path on top of the defaults, applies
// environment overrides and validates the result. An empty path looks for
// tempo.yaml in the usual places and falls back to defaults and environment.
func Load(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DatabaseOnly is Load without the server checks, for commands that only
// touch the database.
func DatabaseOnly(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.validateDatabase(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findConfigFile() string {
	if path := os.Getenv("TEMPO_CONFIG"); path != "" {
		return path
	}
	for _, candidate := range []string{"tempo.yaml", "tempo.yml", filepath.Join("config", "tempo.yaml")} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func (cfg *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (cfg *Config) applyEnv() error {
	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Auth.SecretKey = getEnv("SECRET_KEY", cfg.Auth.SecretKey)
	cfg.Database.Driver = getEnv("DB_DRIVER", cfg.Database.Driver)
	cfg.Database.DSN = getEnv("DB_PATH", cfg.Database.DSN)
	cfg.Database.DSN = getEnv("DATABASE_URL", cfg.Database.DSN)

	var err error
	if cfg.Server.CookieSecure, err = getEnvBool("COOKIE_SECURE", cfg.Server.CookieSecure); err != nil {
		return err
	}
	if cfg.Permissions.LegacyProjectAccess, err = getEnvBool("LEGACY_PROJECT_ACCESS", cfg.Permissions.LegacyProjectAccess); err != nil {
		return err
	}
	if cfg.Hierarchy.ArchiveCascadesTasks, err = getEnvBool("ARCHIVE_CASCADES_TASKS", cfg.Hierarchy.ArchiveCascadesTasks); err != nil {
		return err
	}
	if raw := os.Getenv("SESSION_SWEEP_PROBABILITY"); raw != "" {
		probability, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return fmt.Errorf("invalid SESSION_SWEEP_PROBABILITY %q", raw)
		}
		cfg.Sessions.SweepProbability = probability
	}
	return nil
}

// Validate rejects configurations the server cannot start with.
func (cfg *Config) Validate() error {
	port, err := strconv.Atoi(strings.TrimSpace(cfg.Server.Port))
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %q: must be between 1 and 65535", cfg.Server.Port)
	}
	cfg.Server.Port = strconv.Itoa(port)

	if err := ValidateSecretKey(cfg.Auth.SecretKey); err != nil {
		return err
	}

	if err := cfg.validateDatabase(); err != nil {
		return err
	}

	if cfg.Sessions.SweepProbability < 0 || cfg.Sessions.SweepProbability > 1 {
		return fmt.Errorf("sessions.sweep_probability must be between 0 and 1, got %v", cfg.Sessions.SweepProbability)
	}
	if cfg.Auth.SessionTTL <= 0 || cfg.Auth.RememberMeTTL <= 0 {
		return errors.New("session ttl values must be positive")
	}
	if cfg.Auth.LoginMaxAttempts < 1 || cfg.Auth.LoginAttemptsWindow <= 0 {
		return errors.New("login attempt limits must be positive")
	}
	return nil
}

func (cfg *Config) validateDatabase() error {
	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	switch cfg.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return errors.New("database dsn is required")
	}
	return nil
}

func ValidateSecretKey(secret string) error {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return errors.New("SECRET_KEY is required")
	}
	if _, insecure := insecureSecretKeys[secret]; insecure {
		return errors.New("SECRET_KEY uses an insecure placeholder value")
	}
	if len(secret) < minSecretKeyLength {
		return fmt.Errorf("SECRET_KEY must be at least %d characters", minSecretKeyLength)
	}
	return nil
}

func getEnv(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvBool(key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback, fmt.Errorf("invalid %s %q", key, raw)
	}
	return value, nil
}
