package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/stepper/pkg/config"
	"github.com/aretw0/stepper/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.LoadWithEnv("", env(nil))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, 5000, cfg.MaxRows)
	assert.Equal(t, config.StoreFile, cfg.Store.Kind)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.LoadWithEnv(filepath.Join(t.TempDir(), "absent.yaml"), env(nil))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "stepper.yaml", `
max_rows: 200
seed: pilot-1
log_level: debug
store:
  kind: redis
  redis:
    addr: redis:6379
    ttl: 24h
http:
  addr: ":9000"
privacy:
  pii_patterns: [email, "^name$"]
`)
	cfg, err := config.LoadWithEnv(path, env(nil))
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.MaxRows)
	assert.Equal(t, "pilot-1", cfg.Seed)
	assert.Equal(t, config.StoreRedis, cfg.Store.Kind)
	assert.Equal(t, "redis:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 24*time.Hour, cfg.Store.Redis.TTL)
	assert.Equal(t, "stepper:session:", cfg.Store.Redis.Prefix, "unset fields keep their defaults")
	assert.Equal(t, ":9000", cfg.HTTP.Addr)
	assert.Equal(t, []string{"email", "^name$"}, cfg.Privacy.PIIPatterns)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "stepper.json", `{"max_rows": 10, "store": {"kind": "memory"}}`)
	cfg, err := config.LoadWithEnv(path, env(nil))
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.MaxRows)
	assert.Equal(t, config.StoreMemory, cfg.Store.Kind)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "stepper.yaml", "max_rows: 200\nstore:\n  kind: file\n")
	cfg, err := config.LoadWithEnv(path, env(map[string]string{
		"STEPPER_MAX_ROWS":     "42",
		"STEPPER_STORE":        "redis",
		"STEPPER_REDIS_ADDR":   "cache:6380",
		"STEPPER_REDIS_DB":     "3",
		"STEPPER_REDIS_TTL":    "90m",
		"STEPPER_PII_PATTERNS": "email, phone ,",
	}))
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.MaxRows)
	assert.Equal(t, config.StoreRedis, cfg.Store.Kind)
	assert.Equal(t, "cache:6380", cfg.Store.Redis.Addr)
	assert.Equal(t, 3, cfg.Store.Redis.DB)
	assert.Equal(t, 90*time.Minute, cfg.Store.Redis.TTL)
	assert.Equal(t, []string{"email", "phone"}, cfg.Privacy.PIIPatterns)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
	}{
		{name: "bad int env", env: map[string]string{"STEPPER_MAX_ROWS": "many"}},
		{name: "bad duration env", env: map[string]string{"STEPPER_REDIS_TTL": "soon"}},
		{name: "zero max rows", file: "max_rows: 0\n"},
		{name: "unknown store", file: "store:\n  kind: s3\n"},
		{name: "redis without addr", file: "store:\n  kind: redis\n  redis:\n    addr: \"\"\n"},
		{name: "bad level", file: "log_level: loud\n"},
		{name: "short key", env: map[string]string{"STEPPER_ENCRYPTION_KEY": "abcd"}},
		{name: "bad pii pattern", file: "privacy:\n  pii_patterns: [\"(\"]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := ""
			if tt.file != "" {
				path = writeFile(t, "c.yaml", tt.file)
			}
			_, err := config.LoadWithEnv(path, env(tt.env))
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		})
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeFile(t, "c.yaml", "max_rows: [1\n")
	_, err := config.LoadWithEnv(path, env(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestPrivacyKeys(t *testing.T) {
	hexKey := strings.Repeat("ab", 32)
	b64Key := "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA="

	active, fallback, err := config.PrivacyConfig{
		EncryptionKey: hexKey,
		FallbackKeys:  []string{b64Key},
	}.Keys()
	require.NoError(t, err)
	assert.Len(t, active, 32)
	assert.Equal(t, byte(0xab), active[0])
	require.Len(t, fallback, 1)
	assert.Len(t, fallback[0], 32)

	active, fallback, err = config.PrivacyConfig{}.Keys()
	require.NoError(t, err)
	assert.Nil(t, active)
	assert.Nil(t, fallback)
}
