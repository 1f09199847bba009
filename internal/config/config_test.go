package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
env: dev
database:
  dsn: postgres://localhost/bolao
auth:
  jwt_secret: secret
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, ":3333", cfg.HTTP.Address)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.HTTP.AllowOrigins)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 168*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 6, cfg.Pool.CodeLength)
	assert.Equal(t, 5, cfg.Pool.CodeAttempts)
	assert.Equal(t, 4, cfg.Pool.PreviewSize)
	assert.Equal(t, 30, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.False(t, cfg.Database.Migrate)
}

func TestLoad_ReadsFileValues(t *testing.T) {
	path := writeConfig(t, `
env: prod
http:
  address: ":8080"
  allow_origins: ["https://bolao.app"]
database:
  dsn: postgres://localhost/bolao
  migrate: true
auth:
  jwt_secret: secret
  token_ttl: 1h
pool:
  code_length: 8
rate_limit:
  enabled: true
  burst: 3
metrics:
  enabled: true
  path: /internal/metrics
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, []string{"https://bolao.app"}, cfg.HTTP.AllowOrigins)
	assert.True(t, cfg.Database.Migrate)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 8, cfg.Pool.CodeLength)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 3, cfg.RateLimit.Burst)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/internal/metrics", cfg.Metrics.Path)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwt_secret: from-file
`)
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("HTTP_ADDRESS", ":9090")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, ":9090", cfg.HTTP.Address)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "does not exist")

	path := writeConfig(t, `
env: local
`)
	_, err = Load(path)
	assert.ErrorContains(t, err, "jwt_secret")
}

func TestLoad_RejectsCodeLengthWiderThanColumn(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwt_secret: secret
pool:
  code_length: 17
`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "pool.code_length")

	path = writeConfig(t, `
auth:
  jwt_secret: secret
pool:
  code_length: 16
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, MaxCodeLength, cfg.Pool.CodeLength)
}

func TestLoad_TrustedProxies(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwt_secret: secret
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.HTTP.TrustedProxies)

	t.Setenv("HTTP_TRUSTED_PROXIES", "10.0.0.1,10.0.0.0/8")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.0/8"}, cfg.HTTP.TrustedProxies)
}
