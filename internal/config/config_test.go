package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "112233", cfg.Auth.FieldPIN)
	assert.Equal(t, "223344", cfg.Auth.HQPIN)
	assert.Equal(t, 12*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("AUTH_TOKEN_TTL", "30m")
	t.Setenv("TRUST_SEED", "42")
	t.Setenv("LOG_FORMAT", "text")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, int64(42), cfg.TrustSeed())
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoad_MalformedNumbersFallBack(t *testing.T) {
	t.Setenv("SERVER_PORT", "eighty")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"port":        {"SERVER_PORT": "70000"},
		"log level":   {"LOG_LEVEL": "verbose"},
		"log format":  {"LOG_FORMAT": "xml"},
		"backend":     {"STORAGE_BACKEND": "etcd"},
		"same pins":   {"AUTH_FIELD_PIN": "111111", "AUTH_HQ_PIN": "111111"},
		"short ttl":   {"AUTH_TOKEN_TTL": "10s"},
		"rate limit":  {"RATE_LIMIT_RPS": "0"},
		"buffer size": {"INTAKE_BUFFER_SIZE": "-1"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestTrustSeed_FromClockWhenUnset(t *testing.T) {
	cfg := &Config{}
	assert.NotZero(t, cfg.TrustSeed())
}
