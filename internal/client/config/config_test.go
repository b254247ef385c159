package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() Config {
	var c Config
	c.LoadDefaults()
	return c
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, "http://127.0.0.1:3000", c.APIBaseURL)
	assert.Equal(t, 30*time.Second, c.RequestTimeout)
	assert.Equal(t, 5*time.Minute, c.CacheTTL)
	assert.Equal(t, 3, c.BreakerThreshold)
	assert.Equal(t, 30*time.Second, c.BreakerCooldown)
	assert.Equal(t, 2*time.Second, c.StatePollInterval)
	assert.False(t, c.AutoRefresh)
	require.NoError(t, c.Validate())
}

func TestLoad_DefaultsOnly(t *testing.T) {
	t.Setenv(EnvConfigPath, "")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	want := defaults()
	if diff := cmp.Diff(want, *cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadEnv_OverridesOnlySetVars(t *testing.T) {
	t.Setenv("LINGUA_API_URL", "https://api.example.com")
	t.Setenv("LINGUA_BREAKER_THRESHOLD", "5")
	t.Setenv("LINGUA_CACHE_TTL", "90s")
	t.Setenv("LINGUA_AUTO_REFRESH", "true")
	t.Setenv("LINGUA_PUSH_TOKEN", "ExponentPushToken[abc]")

	c := defaults()
	require.NoError(t, c.LoadEnv())

	want := defaults()
	want.APIBaseURL = "https://api.example.com"
	want.BreakerThreshold = 5
	want.CacheTTL = 90 * time.Second
	want.AutoRefresh = true
	want.PushToken = "ExponentPushToken[abc]"

	if diff := cmp.Diff(want, c); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"relative url", func(c *Config) { c.APIBaseURL = "/api" }, false},
		{"ftp url", func(c *Config) { c.APIBaseURL = "ftp://host" }, false},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }, false},
		{"zero threshold", func(c *Config) { c.BreakerThreshold = 0 }, false},
		{"negative cooldown", func(c *Config) { c.BreakerCooldown = -time.Second }, false},
		{"empty db", func(c *Config) { c.DatabasePath = "" }, false},
		{"no socket", func(c *Config) { c.SocketURL = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := defaults()
			tt.mutate(&c)
			err := c.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestLoad_EnvOverlaysDefaults(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv("LINGUA_DB_PATH", "/tmp/lingua-env.db")
	t.Setenv("LINGUA_BREAKER_COOLDOWN", "1m")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/lingua-env.db", cfg.DatabasePath)
	assert.Equal(t, time.Minute, cfg.BreakerCooldown)
	assert.Equal(t, "http://127.0.0.1:3000", cfg.APIBaseURL, "unset variables keep defaults")
}
