package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Empty(t, cfg.Catalog.DataFile)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tripgeo.yaml")
	data := `
server:
  addr: ":9090"
  read_timeout: 5s
  rate_limit: 2.5
  rate_burst: 5
  cors_origins: ["https://trips.example"]
catalog:
  data_file: /srv/cities.tsv
cache:
  ttl: 1m
log:
  level: debug
  format: text
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout, "unset keys keep defaults")
	assert.Equal(t, 2.5, cfg.Server.RateLimit)
	assert.Equal(t, 5, cfg.Server.RateBurst)
	assert.Equal(t, []string{"https://trips.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "/srv/cities.tsv", cfg.Catalog.DataFile)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tripgeo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9090\"\n"), 0644))

	t.Setenv(EnvAddr, "127.0.0.1:7000")
	t.Setenv(EnvRateLimit, "0")
	t.Setenv(EnvCacheTTL, "30s")
	t.Setenv(EnvCORSOrigins, " https://a.example , ,https://b.example")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.Server.Addr)
	assert.Zero(t, cfg.Server.RateLimit)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("server: [not, a, map]\n"), 0644))
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestApplyEnvRejectsMalformedValues(t *testing.T) {
	tests := map[string]string{
		EnvRateLimit: "fast",
		EnvRateBurst: "1.5",
		EnvCacheTTL:  "forever",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			cfg := Default()
			err := cfg.applyEnv(func(k string) (string, bool) {
				if k == key {
					return value, true
				}
				return "", false
			})
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"negative rate", func(c *Config) { c.Server.RateLimit = -1 }},
		{"zero burst", func(c *Config) { c.Server.RateBurst = 0 }},
		{"negative ttl", func(c *Config) { c.Cache.TTL = -time.Second }},
		{"bad level", func(c *Config) { c.Log.Level = "chatty" }},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := Default()
	cfg.Server.RateLimit = 0
	cfg.Server.RateBurst = 0
	assert.NoError(t, cfg.Validate(), "burst is ignored when rate limiting is off")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	cfg := Default()
	cfg.Log.Level = "warn"
	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "city", "Haridwar")

	// Non-terminal writers get JSON under the auto format.
	line := strings.TrimSpace(buf.String())
	require.NotEmpty(t, line)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "Haridwar", rec["city"])

	buf.Reset()
	cfg.Log.Format = FormatText
	cfg.NewLogger(&buf).Warn("plain")
	assert.Contains(t, buf.String(), "msg=plain")
}
