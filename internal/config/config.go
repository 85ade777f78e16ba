package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultPath is the optional YAML file read before the environment.
const DefaultPath = "config.yaml"

const envPrefix = "LCA_"

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Gemini    GeminiConfig    `koanf:"gemini"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	CORS      CORSConfig      `koanf:"cors"`
	Log       LogConfig       `koanf:"log"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

type ServerConfig struct {
	Port           int           `koanf:"port"`
	Environment    string        `koanf:"environment"`     // development, production, ...
	MaxBodyBytes   int64         `koanf:"max_body_bytes"`  // request body limit
	RequestTimeout time.Duration `koanf:"request_timeout"` // 0 disables the timeout middleware
}

type GeminiConfig struct {
	APIKey string `koanf:"api_key"`
	Model  string `koanf:"model"`
}

type RateLimitConfig struct {
	Requests int           `koanf:"requests"` // per window
	Window   time.Duration `koanf:"window"`
	Capacity int           `koanf:"capacity"` // max tracked clients
}

type CORSConfig struct {
	Open           bool     `koanf:"open"`
	AllowedOrigins []string `koanf:"allowed_origins"`
	MaxAge         int      `koanf:"max_age"` // seconds
}

type LogConfig struct {
	Level string `koanf:"level"`
}

type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	ServiceName string `koanf:"service_name"`
}

// IsDevelopment reports whether error details may be shown to clients.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Server.Environment, "development")
}

var defaults = map[string]any{
	"server.port":            5000,
	"server.environment":     "production",
	"server.max_body_bytes":  10 << 20,
	"server.request_timeout": "0s",
	"gemini.model":           "gemini-1.5-flash",
	"rate_limit.requests":    10,
	"rate_limit.window":      "15m",
	"rate_limit.capacity":    10000,
	"cors.open":              true,
	"cors.max_age":           86400,
	"log.level":              "info",
	"telemetry.enabled":      false,
	"telemetry.service_name": "lca-gateway",
}

// plainEnv maps the conventional variable names to config keys.
var plainEnv = map[string]string{
	"PORT":            "server.port",
	"NODE_ENV":        "server.environment",
	"APP_ENV":         "server.environment",
	"GEMINI_API_KEY":  "gemini.api_key",
	"GEMINI_MODEL":    "gemini.model",
	"OPEN_CORS":       "cors.open",
	"ALLOWED_ORIGINS": "cors.allowed_origins",
	"LOG_LEVEL":       "log.level",
}

// listKeys are read from the environment as comma-separated lists.
var listKeys = map[string]bool{
	"cors.allowed_origins": true,
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads DefaultPath (if present) and then the environment.
func Load() (*Config, error) {
	return LoadFile(DefaultPath)
}

// LoadFile reads the YAML file at path (if present), then the environment.
// Environment values override the file.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	// Try to load from the config file first
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			// File not found is OK, we'll use env vars
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("config: load %s: %w", path, err)
			}
		}
	}

	// Conventional names (PORT, GEMINI_API_KEY, ...); empty values are ignored
	if err := k.Load(env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		if strings.TrimSpace(value) == "" {
			return "", nil
		}
		name := plainEnv[key]
		return name, envValue(name, value)
	}), nil); err != nil {
		return nil, fmt.Errorf("config: load env: %w", err)
	}

	// Prefixed, nested names: LCA_RATE_LIMIT__WINDOW -> rate_limit.window
	if err := k.Load(env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, interface{}) {
		name := strings.Replace(strings.ToLower(strings.TrimPrefix(key, envPrefix)), "__", ".", -1)
		return name, envValue(name, value)
	}), nil); err != nil {
		return nil, fmt.Errorf("config: load env: %w", err)
	}

	for key, val := range defaults {
		if !k.Exists(key) {
			k.Set(key, val)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.Gemini.APIKey = strings.TrimSpace(substituteEnvVars(cfg.Gemini.APIKey))

	return &cfg, nil
}

// Validate reports configuration the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Gemini.APIKey == "" {
		errs = append(errs, errors.New("GEMINI_API_KEY is required"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.RateLimit.Requests <= 0 {
		errs = append(errs, fmt.Errorf("rate_limit.requests must be positive, got %d", c.RateLimit.Requests))
	}
	if c.RateLimit.Window <= 0 {
		errs = append(errs, fmt.Errorf("rate_limit.window must be positive, got %s", c.RateLimit.Window))
	}
	if c.RateLimit.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("rate_limit.capacity must be positive, got %d", c.RateLimit.Capacity))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body_bytes must be positive, got %d", c.Server.MaxBodyBytes))
	}
	return errors.Join(errs...)
}

// envValue converts an environment value for the config key name.
func envValue(name, value string) interface{} {
	if !listKeys[name] {
		return value
	}
	parts := strings.Split(value, ",")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			list = append(list, p)
		}
	}
	return list
}

func substituteEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}
