// Package config loads hotelbot settings from defaults, an optional YAML file,
// a .env file and HOTELBOT_* environment variables, in that order.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultFile is looked up in the working directory when no path is given.
	DefaultFile = "hotelbot.yaml"

	envPrefix = "HOTELBOT_"
)

// Store kinds.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config is the top-level hotelbot configuration.
type Config struct {
	Backend    BackendConfig `yaml:"backend"`
	Store      StoreConfig   `yaml:"store"`
	Server     ServerConfig  `yaml:"server"`
	ResetDelay time.Duration `yaml:"reset_delay"`
	LogLevel   string        `yaml:"log_level"`
	Debug      bool          `yaml:"debug"`
}

// BackendConfig points at the booking service.
type BackendConfig struct {
	URL              string        `yaml:"url"`
	Timeout          time.Duration `yaml:"timeout"` // zero waits forever
	ValidateContract bool          `yaml:"validate_contract"`
}

// StoreConfig selects where conversations live.
type StoreConfig struct {
	Kind        string        `yaml:"kind"`
	Dir         string        `yaml:"dir"`
	RedisURL    string        `yaml:"redis_url"`
	RedisPrefix string        `yaml:"redis_prefix"`
	TTL         time.Duration `yaml:"ttl"`

	// EncryptionKey is a base64 AES-256 key. When set, conversations are sealed at rest.
	EncryptionKey string `yaml:"encryption_key"`

	// Redact lists regular expressions masked in the user's text before it is stored.
	Redact []string `yaml:"redact"`
}

// Key decodes EncryptionKey. It returns nil when encryption is off.
func (s StoreConfig) Key() ([]byte, error) {
	if s.EncryptionKey == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(s.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("store.encryption_key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("store.encryption_key: want 32 bytes, got %d", len(key))
	}
	return key, nil
}

// ServerConfig holds the web front-end settings.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	RateLimit      float64  `yaml:"rate_limit"` // submissions per second per session, zero disables
	RateBurst      int      `yaml:"rate_burst"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			URL: "http://127.0.0.1:8000",
		},
		Store: StoreConfig{
			Kind:        StoreMemory,
			Dir:         ".hotelbot/sessions",
			RedisURL:    "redis://localhost:6379/0",
			RedisPrefix: "hotelbot:session:",
		},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
			RateLimit:      2,
			RateBurst:      5,
		},
		ResetDelay: 5 * time.Second,
		LogLevel:   "info",
	}
}

// Load builds the configuration. An empty path means DefaultFile, which may be absent;
// an explicit path must exist.
func Load(path string) (*Config, error) {
	return load(path, ".env")
}

func load(path, envFile string) (*Config, error) {
	cfg := Default()

	optional := path == ""
	if optional {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case optional && errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	// Variables already set in the environment win over .env.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read %s: %w", envFile, err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse unmarshals YAML bytes over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var errs []string
	str := func(key string, dst *string) {
		if v := os.Getenv(envPrefix + key); v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v := os.Getenv(envPrefix + key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s%s: %v", envPrefix, key, err))
				return
			}
			*dst = d
		}
	}
	boolean := func(key string, dst *bool) {
		if v := os.Getenv(envPrefix + key); v != "" {
			switch strings.ToLower(strings.TrimSpace(v)) {
			case "1", "true", "yes", "y", "on":
				*dst = true
			case "0", "false", "no", "n", "off":
				*dst = false
			default:
				errs = append(errs, fmt.Sprintf("%s%s: invalid boolean %q", envPrefix, key, v))
			}
		}
	}

	str("BACKEND_URL", &c.Backend.URL)
	dur("BACKEND_TIMEOUT", &c.Backend.Timeout)
	boolean("VALIDATE_CONTRACT", &c.Backend.ValidateContract)
	dur("RESET_DELAY", &c.ResetDelay)
	str("STORE", &c.Store.Kind)
	str("STORE_DIR", &c.Store.Dir)
	str("REDIS_URL", &c.Store.RedisURL)
	str("REDIS_PREFIX", &c.Store.RedisPrefix)
	dur("SESSION_TTL", &c.Store.TTL)
	str("STORE_KEY", &c.Store.EncryptionKey)
	str("ADDR", &c.Server.Addr)
	str("LOG_LEVEL", &c.LogLevel)
	boolean("DEBUG", &c.Debug)

	if v := os.Getenv(envPrefix + "ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv(envPrefix + "REDACT"); v != "" {
		c.Store.Redact = splitList(v)
	}
	if v := os.Getenv(envPrefix + "RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%sRATE_LIMIT: %v", envPrefix, err))
		} else {
			c.Server.RateLimit = f
		}
	}
	if v := os.Getenv(envPrefix + "RATE_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%sRATE_BURST: %v", envPrefix, err))
		} else {
			c.Server.RateBurst = n
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: environment: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Validate checks that all fields are consistent.
func (c *Config) Validate() error {
	var errs []string
	if c.Backend.URL == "" {
		errs = append(errs, "backend.url is required")
	}
	if c.Backend.Timeout < 0 {
		errs = append(errs, "backend.timeout must not be negative")
	}
	switch c.Store.Kind {
	case StoreMemory:
	case StoreFile:
		if c.Store.Dir == "" {
			errs = append(errs, "store.dir is required for the file store")
		}
	case StoreRedis:
		if c.Store.RedisURL == "" {
			errs = append(errs, "store.redis_url is required for the redis store")
		}
	default:
		errs = append(errs, fmt.Sprintf("store.kind %q is not one of memory, file, redis", c.Store.Kind))
	}
	if _, err := c.Store.Key(); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, "server.rate_limit must not be negative")
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
		errs = append(errs, "server.rate_burst must be at least 1")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
