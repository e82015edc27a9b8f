package config_test

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/ruleflow/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ruleflow.yaml")
	content := `
server:
  addr: ":9090"
store:
  driver: redis
  redis:
    addr: redis:6379
    db: 2
rules:
  dir: ./rules
evaluator:
  url: http://rules.local
  timeout: 3s
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, config.StoreRedis, cfg.Store.Driver)
	assert.Equal(t, "redis:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 2, cfg.Store.Redis.DB)
	assert.Equal(t, "ruleflow:workflow:", cfg.Store.Redis.Prefix, "unset keys keep their default")
	assert.Equal(t, "./rules", cfg.Rules.Dir)
	assert.Equal(t, 3*time.Second, cfg.Evaluator.Timeout)
	assert.True(t, cfg.Metrics.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [oops"), 0644))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("RULEFLOW_STORE", "file")
	t.Setenv("RULEFLOW_STORE_PATH", "/var/lib/ruleflow")
	t.Setenv("RULEFLOW_REDIS_DB", "5")
	t.Setenv("RULEFLOW_EVALUATOR_TIMEOUT", "250ms")
	t.Setenv("RULEFLOW_METRICS", "false")

	cfg := config.Default()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, config.StoreFile, cfg.Store.Driver)
	assert.Equal(t, "/var/lib/ruleflow", cfg.Store.Path)
	assert.Equal(t, 5, cfg.Store.Redis.DB)
	assert.Equal(t, 250*time.Millisecond, cfg.Evaluator.Timeout)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestApplyEnv_InvalidValues(t *testing.T) {
	for _, name := range []string{"RULEFLOW_REDIS_DB", "RULEFLOW_EVALUATOR_TIMEOUT", "RULEFLOW_METRICS"} {
		t.Run(name, func(t *testing.T) {
			t.Setenv(name, "not-a-value")
			cfg := config.Default()
			err := cfg.ApplyEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), name)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"unknown driver", func(c *config.Config) { c.Store.Driver = "etcd" }, "store.driver"},
		{"file without path", func(c *config.Config) { c.Store.Driver = "file"; c.Store.Path = "" }, "store.path"},
		{"redis without addr", func(c *config.Config) { c.Store.Driver = "redis"; c.Store.Redis.Addr = "" }, "store.redis.addr"},
		{"bad evaluator url", func(c *config.Config) { c.Evaluator.URL = "ftp://x" }, "evaluator.url"},
		{"negative timeout", func(c *config.Config) { c.Evaluator.Timeout = -time.Second }, "evaluator.timeout"},
		{"bad log level", func(c *config.Config) { c.Log.Level = "chatty" }, "log.level"},
		{"key not base64", func(c *config.Config) { c.Store.EncryptionKey = "%%%" }, "store.encryption_key"},
		{"short key", func(c *config.Config) { c.Store.EncryptionKey = base64.StdEncoding.EncodeToString([]byte("short")) }, "32 bytes"},
		{"short fallback key", func(c *config.Config) {
			c.Store.EncryptionKey = base64.StdEncoding.EncodeToString(make([]byte, 32))
			c.Store.FallbackKeys = []string{"AAAA"}
		}, "store.fallback_keys[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestStoreKeys(t *testing.T) {
	active, fallbacks, err := config.Default().Store.Keys()
	require.NoError(t, err)
	assert.Nil(t, active)
	assert.Nil(t, fallbacks)

	key := make([]byte, 32)
	key[0] = 7
	store := config.StoreConfig{
		EncryptionKey: base64.StdEncoding.EncodeToString(key),
		FallbackKeys:  []string{base64.StdEncoding.EncodeToString(make([]byte, 32))},
	}
	active, fallbacks, err = store.Keys()
	require.NoError(t, err)
	assert.Equal(t, key, active)
	assert.Len(t, fallbacks, 1)
}
