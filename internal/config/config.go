package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	App     AppConfig     `toml:"app"`
	Auth    AuthConfig    `toml:"auth"`
	Storage StorageConfig `toml:"storage"`
	Seed    SeedConfig    `toml:"seed"`
	Places  PlacesConfig  `toml:"places"`
	Log     LogConfig     `toml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int  `toml:"port"`
	AutoOpenBrowser bool `toml:"auto_open_browser"`
}

// AppConfig identifies the application in document paths.
type AppConfig struct {
	ID string `toml:"id"`
}

// AuthConfig holds identity and session bootstrap settings.
type AuthConfig struct {
	InitialAuthToken       string `toml:"initial_auth_token"`
	CustomTokenSecret      string `toml:"custom_token_secret"`
	IdentityTimeoutSeconds int    `toml:"identity_timeout_seconds"`
	SignInAttempts         int    `toml:"sign_in_attempts"`
	RetryBackoffMS         int    `toml:"retry_backoff_ms"`
}

// StorageConfig selects where preference documents live.
type StorageConfig struct {
	Backend       string `toml:"backend"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	RedisPrefix   string `toml:"redis_prefix"`
}

// SeedConfig holds mock opportunity settings.
type SeedConfig struct {
	LatencyMS int `toml:"latency_ms"`
}

// PlacesConfig selects the home-zone suggestion provider.
type PlacesConfig struct {
	Provider string   `toml:"provider"`
	Areas    []string `toml:"areas"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// IdentityTimeout returns the identity phase bound as a duration.
func (a AuthConfig) IdentityTimeout() time.Duration {
	return time.Duration(a.IdentityTimeoutSeconds) * time.Second
}

// RetryBackoff returns the base sign-in retry delay as a duration.
func (a AuthConfig) RetryBackoff() time.Duration {
	return time.Duration(a.RetryBackoffMS) * time.Millisecond
}

// Latency returns the simulated seed fetch delay as a duration.
func (s SeedConfig) Latency() time.Duration {
	return time.Duration(s.LatencyMS) * time.Millisecond
}

const (
	defaultPort            = 8080
	defaultAppID           = "default-app-id"
	defaultIdentityTimeout = 10
	defaultSignInAttempts  = 3
	defaultRetryBackoffMS  = 250
	defaultBackend         = "sqlite"
	defaultRedisAddr       = "localhost:6379"
	defaultRedisPrefix     = "driverpro:"
	defaultLatencyMS       = 500
	defaultPlacesProvider  = "static"
	defaultLogLevel        = "info"
	defaultLogFormat       = "text"
)

const defaultConfigContent = `[server]
port = 8080
auto_open_browser = true

[app]
id = "default-app-id"             # Namespace for preference documents (or set APP_ID)

[auth]
initial_auth_token = ""           # One-time credential tried before anonymous sign-in
custom_token_secret = ""          # HS256 secret for one-time credentials (or set CUSTOM_TOKEN_SECRET)
identity_timeout_seconds = 10
sign_in_attempts = 3
retry_backoff_ms = 250

[storage]
backend = "sqlite"                # "sqlite" or "redis"
redis_addr = "localhost:6379"
redis_password = ""
redis_db = 0
redis_prefix = "driverpro:"

[seed]
latency_ms = 500                  # Simulated network delay for mock data

[places]
provider = "static"

[log]
level = "info"                    # "debug", "info", "warn" or "error"
format = "text"                   # "text" or "json"
`

// Load reads and parses the TOML config from the given path. If the file does
// not exist, it creates a default config file at that path. Environment
// variables override values from the file with highest priority.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := createDefault(path); err != nil {
			return nil, fmt.Errorf("creating default config: %w", err)
		}
		slog.Info("created default config file", "path", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		slog.Warn("unknown config keys ignored", "keys", fmt.Sprint(undecoded))
	}

	// Validate explicitly-set values before applying defaults, so that
	// explicitly writing "port = 0" is an error rather than silently
	// being replaced with the default.
	if err := validateExplicit(&cfg, md); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	applyDefaults(&cfg, md)
	applyEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// createDefault writes the default config content to the given path,
// creating any parent directories as needed.
func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigContent), 0o644); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// validateExplicit checks values that were explicitly set in the TOML file.
// This catches cases like "port = 0" which would otherwise be silently
// replaced by the default value.
func validateExplicit(cfg *Config, md toml.MetaData) error {
	if md.IsDefined("server", "port") {
		if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
			return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
		}
	}
	if md.IsDefined("auth", "identity_timeout_seconds") && cfg.Auth.IdentityTimeoutSeconds < 1 {
		return fmt.Errorf("invalid auth.identity_timeout_seconds %d: must be >= 1", cfg.Auth.IdentityTimeoutSeconds)
	}
	if md.IsDefined("auth", "sign_in_attempts") && cfg.Auth.SignInAttempts < 1 {
		return fmt.Errorf("invalid auth.sign_in_attempts %d: must be >= 1", cfg.Auth.SignInAttempts)
	}
	if md.IsDefined("app", "id") && strings.TrimSpace(cfg.App.ID) == "" {
		return errors.New("invalid app.id: must not be empty")
	}
	return nil
}

// applyDefaults sets default values for any zero-valued fields. Values where
// zero is meaningful (seed latency, retry backoff) are only defaulted when
// the key is absent.
func applyDefaults(cfg *Config, md toml.MetaData) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultPort
	}
	// auto_open_browser defaults to true in the generated file; a missing
	// key in a hand-edited file reads as false and is left alone.
	if cfg.App.ID == "" {
		cfg.App.ID = defaultAppID
	}
	if cfg.Auth.IdentityTimeoutSeconds == 0 {
		cfg.Auth.IdentityTimeoutSeconds = defaultIdentityTimeout
	}
	if cfg.Auth.SignInAttempts == 0 {
		cfg.Auth.SignInAttempts = defaultSignInAttempts
	}
	if !md.IsDefined("auth", "retry_backoff_ms") {
		cfg.Auth.RetryBackoffMS = defaultRetryBackoffMS
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = defaultBackend
	}
	if cfg.Storage.RedisAddr == "" {
		cfg.Storage.RedisAddr = defaultRedisAddr
	}
	if cfg.Storage.RedisPrefix == "" {
		cfg.Storage.RedisPrefix = defaultRedisPrefix
	}
	if !md.IsDefined("seed", "latency_ms") {
		cfg.Seed.LatencyMS = defaultLatencyMS
	}
	if cfg.Places.Provider == "" {
		cfg.Places.Provider = defaultPlacesProvider
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = defaultLogFormat
	}
}

// applyEnvOverrides applies environment variable overrides. Environment
// variables take highest priority over config file values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("APP_ID"); v != "" {
		cfg.App.ID = v
	}
	if v := os.Getenv("INITIAL_AUTH_TOKEN"); v != "" {
		cfg.Auth.InitialAuthToken = v
	}
	if v := os.Getenv("CUSTOM_TOKEN_SECRET"); v != "" {
		cfg.Auth.CustomTokenSecret = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Storage.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Storage.RedisPassword = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// validate checks that configuration values are within acceptable ranges.
func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
	}

	if strings.Contains(cfg.App.ID, "/") {
		return fmt.Errorf("invalid app.id %q: must not contain '/'", cfg.App.ID)
	}

	if cfg.Auth.IdentityTimeoutSeconds < 1 {
		return fmt.Errorf("invalid auth.identity_timeout_seconds %d: must be >= 1", cfg.Auth.IdentityTimeoutSeconds)
	}
	if cfg.Auth.SignInAttempts < 1 {
		return fmt.Errorf("invalid auth.sign_in_attempts %d: must be >= 1", cfg.Auth.SignInAttempts)
	}
	if cfg.Auth.RetryBackoffMS < 0 {
		return fmt.Errorf("invalid auth.retry_backoff_ms %d: must be >= 0", cfg.Auth.RetryBackoffMS)
	}

	switch cfg.Storage.Backend {
	case "sqlite", "redis":
		// valid
	default:
		return fmt.Errorf("invalid storage.backend %q: must be \"sqlite\" or \"redis\"", cfg.Storage.Backend)
	}
	if cfg.Storage.RedisDB < 0 {
		return fmt.Errorf("invalid storage.redis_db %d: must be >= 0", cfg.Storage.RedisDB)
	}

	if cfg.Seed.LatencyMS < 0 {
		return fmt.Errorf("invalid seed.latency_ms %d: must be >= 0", cfg.Seed.LatencyMS)
	}

	if cfg.Places.Provider != "static" {
		return fmt.Errorf("invalid places.provider %q: must be \"static\"", cfg.Places.Provider)
	}

	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("invalid log.level %q: must be debug, info, warn or error", cfg.Log.Level)
	}
	switch cfg.Log.Format {
	case "text", "json":
		// valid
	default:
		return fmt.Errorf("invalid log.format %q: must be \"text\" or \"json\"", cfg.Log.Format)
	}

	if cfg.Auth.InitialAuthToken != "" && cfg.Auth.CustomTokenSecret == "" {
		slog.Warn("auth.initial_auth_token is set but auth.custom_token_secret is empty: the token cannot be verified and sign-in will fall back to anonymous")
	}

	return nil
}
