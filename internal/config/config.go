// Package config loads ruleflow settings from a YAML file and RULEFLOW_* environment variables.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/ruleflow/internal/logging"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "ruleflow.yaml"

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Rules     RulesConfig     `yaml:"rules"`
	Evaluator EvaluatorConfig `yaml:"evaluator"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	// ValidateRequests checks request bodies against the embedded OpenAPI document.
	ValidateRequests bool `yaml:"validate_requests"`
}

type StoreConfig struct {
	Driver string      `yaml:"driver"`
	Path   string      `yaml:"path"`
	Redis  RedisConfig `yaml:"redis"`

	// EncryptionKey is a base64 AES-256 key. When set, definitions are encrypted at rest.
	EncryptionKey string `yaml:"encryption_key"`
	// FallbackKeys are older base64 keys still accepted for decryption.
	FallbackKeys []string `yaml:"fallback_keys"`
}

// Keys decodes the encryption keys. active is nil when encryption is off.
func (s StoreConfig) Keys() (active []byte, fallbacks [][]byte, err error) {
	if s.EncryptionKey == "" {
		return nil, nil, nil
	}
	active, err = decodeKey(s.EncryptionKey)
	if err != nil {
		return nil, nil, fmt.Errorf("store.encryption_key: %w", err)
	}
	for i, k := range s.FallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("store.fallback_keys[%d]: %w", i, err)
		}
		fallbacks = append(fallbacks, key)
	}
	return active, fallbacks, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

type RulesConfig struct {
	// Dir is a Loam repository of rule documents. Empty means no rules.
	Dir string `yaml:"dir"`
}

type EvaluatorConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
	Token   string        `yaml:"token"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the settings used when no file or environment overrides exist.
func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		Store: StoreConfig{
			Driver: StoreMemory,
			Path:   ".ruleflow/workflows",
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "ruleflow:workflow:",
			},
		},
		Evaluator: EvaluatorConfig{Timeout: 10 * time.Second},
		Log:       LogConfig{Level: "info"},
		Metrics:   MetricsConfig{Enabled: true},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from RULEFLOW_* environment variables.
func (c *Config) ApplyEnv() error {
	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(name); ok {
			*dst = v
		}
	}

	str("RULEFLOW_ADDR", &c.Server.Addr)
	str("RULEFLOW_STORE", &c.Store.Driver)
	str("RULEFLOW_STORE_PATH", &c.Store.Path)
	str("RULEFLOW_STORE_KEY", &c.Store.EncryptionKey)
	str("RULEFLOW_REDIS_ADDR", &c.Store.Redis.Addr)
	str("RULEFLOW_REDIS_PASSWORD", &c.Store.Redis.Password)
	str("RULEFLOW_REDIS_PREFIX", &c.Store.Redis.Prefix)
	str("RULEFLOW_RULES_DIR", &c.Rules.Dir)
	str("RULEFLOW_EVALUATOR_URL", &c.Evaluator.URL)
	str("RULEFLOW_EVALUATOR_TOKEN", &c.Evaluator.Token)
	str("RULEFLOW_LOG_LEVEL", &c.Log.Level)

	if v, ok := os.LookupEnv("RULEFLOW_REDIS_DB"); ok {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RULEFLOW_REDIS_DB: %w", err)
		}
		c.Store.Redis.DB = db
	}
	if v, ok := os.LookupEnv("RULEFLOW_EVALUATOR_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("RULEFLOW_EVALUATOR_TIMEOUT: %w", err)
		}
		c.Evaluator.Timeout = d
	}
	if v, ok := os.LookupEnv("RULEFLOW_METRICS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("RULEFLOW_METRICS: %w", err)
		}
		c.Metrics.Enabled = b
	}
	return nil
}

// Validate reports every inconsistent setting at once.
func (c Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.Store.Driver) {
	case StoreMemory:
	case StoreFile:
		if c.Store.Path == "" {
			errs = append(errs, errors.New("store.path is required for the file driver"))
		}
	case StoreRedis:
		if c.Store.Redis.Addr == "" {
			errs = append(errs, errors.New("store.redis.addr is required for the redis driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.driver %q is not one of memory, file, redis", c.Store.Driver))
	}

	if _, _, err := c.Store.Keys(); err != nil {
		errs = append(errs, err)
	}

	if c.Evaluator.URL != "" && !strings.HasPrefix(c.Evaluator.URL, "http://") && !strings.HasPrefix(c.Evaluator.URL, "https://") {
		errs = append(errs, fmt.Errorf("evaluator.url %q must be http or https", c.Evaluator.URL))
	}
	if c.Evaluator.Timeout < 0 {
		errs = append(errs, errors.New("evaluator.timeout must not be negative"))
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	return errors.Join(errs...)
}
