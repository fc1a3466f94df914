// Package config loads stepper settings from a YAML (or JSON) file and the environment.
package config

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/stepper/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Store kinds.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "STEPPER_"

// Config is the complete runtime configuration.
type Config struct {
	// MaxRows is the safety limit applied by tables and sequences.
	MaxRows int `yaml:"max_rows"`
	// Seed makes shuffles and sampling reproducible when set.
	Seed     string `yaml:"seed"`
	LogLevel string `yaml:"log_level"`

	Store   StoreConfig   `yaml:"store"`
	HTTP    HTTPConfig    `yaml:"http"`
	Privacy PrivacyConfig `yaml:"privacy"`
}

// StoreConfig selects and configures the session store.
type StoreConfig struct {
	Kind  string      `yaml:"kind"`
	Path  string      `yaml:"path"`
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig configures the Redis store and locker.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
	LockTTL  time.Duration `yaml:"lock_ttl"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr        string `yaml:"addr"`
	MetricsPath string `yaml:"metrics_path"`
}

// PrivacyConfig configures the persistence middlewares.
type PrivacyConfig struct {
	// EncryptionKey is a 32-byte AES key, hex or base64 encoded. Empty disables encryption.
	EncryptionKey string `yaml:"encryption_key"`
	// FallbackKeys are older keys still accepted for decryption.
	FallbackKeys []string `yaml:"fallback_keys"`
	// PIIPatterns are regular expressions matched against data keys to mask before saving.
	PIIPatterns []string `yaml:"pii_patterns"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		MaxRows:  domain.DefaultMaxRows,
		LogLevel: "info",
		Store: StoreConfig{
			Kind: StoreFile,
			Redis: RedisConfig{
				Addr:    "localhost:6379",
				Prefix:  "stepper:session:",
				LockTTL: 30 * time.Second,
			},
		},
		HTTP: HTTPConfig{
			Addr:        ":8080",
			MetricsPath: "/metrics",
		},
	}
}

// Load reads path over the defaults, then applies environment overrides.
// A missing file is not an error; an empty path skips the file.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with an explicit environment lookup.
func LoadWithEnv(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return cfg, fmt.Errorf("failed to read config: %w", err)
		default:
			// JSON documents are valid YAML.
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"SEED":           &c.Seed,
		"LOG_LEVEL":      &c.LogLevel,
		"STORE":          &c.Store.Kind,
		"STORE_PATH":     &c.Store.Path,
		"REDIS_ADDR":     &c.Store.Redis.Addr,
		"REDIS_PASSWORD": &c.Store.Redis.Password,
		"REDIS_PREFIX":   &c.Store.Redis.Prefix,
		"HTTP_ADDR":      &c.HTTP.Addr,
		"ENCRYPTION_KEY": &c.Privacy.EncryptionKey,
	}
	for name, dst := range strs {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"MAX_ROWS": &c.MaxRows,
		"REDIS_DB": &c.Store.Redis.DB,
	}
	for name, dst := range ints {
		if v, ok := lookup(EnvPrefix + name); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%w: %s%s=%q is not an integer", domain.ErrInvalidArgument, EnvPrefix, name, v)
			}
			*dst = n
		}
	}

	if v, ok := lookup(EnvPrefix + "REDIS_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %sREDIS_TTL: %w", domain.ErrInvalidArgument, EnvPrefix, err)
		}
		c.Store.Redis.TTL = d
	}
	if v, ok := lookup(EnvPrefix + "PII_PATTERNS"); ok {
		c.Privacy.PIIPatterns = splitList(v)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	if c.MaxRows <= 0 {
		return fmt.Errorf("%w: max_rows must be positive, got %d", domain.ErrInvalidArgument, c.MaxRows)
	}
	switch c.Store.Kind {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		return fmt.Errorf("%w: unknown store kind %q", domain.ErrInvalidArgument, c.Store.Kind)
	}
	if c.Store.Kind == StoreRedis && c.Store.Redis.Addr == "" {
		return fmt.Errorf("%w: redis store needs an address", domain.ErrInvalidArgument)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, _, err := c.Privacy.Keys(); err != nil {
		return err
	}
	for _, p := range c.Privacy.PIIPatterns {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("%w: pii pattern %q: %w", domain.ErrInvalidArgument, p, err)
		}
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return level, fmt.Errorf("%w: log_level: %w", domain.ErrInvalidArgument, err)
	}
	return level, nil
}

// Keys decodes the encryption keys. The active key is nil when encryption is off.
func (p PrivacyConfig) Keys() (active []byte, fallback [][]byte, err error) {
	if p.EncryptionKey == "" {
		return nil, nil, nil
	}
	if active, err = decodeKey(p.EncryptionKey); err != nil {
		return nil, nil, err
	}
	for _, k := range p.FallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, nil, err
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

func decodeKey(s string) ([]byte, error) {
	if key, err := hex.DecodeString(s); err == nil && len(key) == 32 {
		return key, nil
	}
	if key, err := base64.StdEncoding.DecodeString(s); err == nil && len(key) == 32 {
		return key, nil
	}
	return nil, fmt.Errorf("%w: encryption keys must be 32 bytes, hex or base64 encoded", domain.ErrInvalidArgument)
}
