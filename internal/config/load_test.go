package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, path, err := Load(WithPath(filepath.Join(t.TempDir(), "missing.yaml")))
	require.NoError(t, err)
	assert.Contains(t, path, "missing.yaml")
	assert.Equal(t, Default(), cfg)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  addr: ":9000"
database:
  url: ${TEST_DATABASE_URL}
engine:
  pool_ttl: 90s
observability:
  logging:
    level: debug
heuristics:
  eos:
    ideal_employees:
      min: 20
      max: 150
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	env := map[string]string{"TEST_DATABASE_URL": "postgres://localhost/goals"}
	cfg, _, err := Load(WithPath(path), WithEnvLookup(func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	}))
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 600, cfg.Server.RateLimitPerMinute)
	assert.Equal(t, "postgres://localhost/goals", cfg.Database.URL)
	assert.Equal(t, 90*time.Second, cfg.Engine.PoolTTL)
	assert.Equal(t, 256, cfg.Engine.PoolSize)
	assert.Equal(t, 10*time.Second, cfg.Engine.InitTimeout)
	assert.Equal(t, "debug", cfg.Observability.Logging.Level)
	assert.Equal(t, "json", cfg.Observability.Logging.Format)
	assert.Equal(t, 20, cfg.Heuristics.EOS.IdealEmployees.Min)
	assert.Equal(t, 150, cfg.Heuristics.EOS.IdealEmployees.Max)
	assert.Equal(t, 24, cfg.Heuristics.EOS.MinAgeMonths)
	assert.NotEmpty(t, cfg.Heuristics.OKR.Industries)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	content := []byte(`
engine:
  pool_size: 0
heuristics:
  okr:
    max_completion_rate: 1.5
`)
	_, _, err := Load(WithPath("inline.yaml"), WithReadFile(func(string) ([]byte, error) { return content, nil }))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine.pool_size")
	assert.Contains(t, err.Error(), "heuristics.okr.max_completion_rate")
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	_, _, err := Load(WithPath("bad.yaml"), WithReadFile(func(string) ([]byte, error) { return []byte("server: ["), nil }))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestResolveConfigPathPriority(t *testing.T) {
	path, source := ResolveConfigPath(func(key string) (string, bool) {
		return "/etc/goalbridge.yaml", key == configPathEnv
	}, nil)
	assert.Equal(t, "/etc/goalbridge.yaml", path)
	assert.Equal(t, configPathEnv, source)

	path, source = ResolveConfigPath(func(string) (string, bool) { return "", false }, func() (string, error) { return "/home/me", nil })
	assert.Equal(t, filepath.Join("/home/me", ".goalbridge", "config.yaml"), path)
	assert.Equal(t, "default", source)
}
