package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverrides_OnlyChangedFlagsApply(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o := BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"--timeout", "5s", "--log-level", "debug"}))

	c := defaults()
	c.APIBaseURL = "https://from-env.example"
	o.Apply(&c)

	assert.Equal(t, 5*time.Second, c.RequestTimeout)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "https://from-env.example", c.APIBaseURL, "unset flag must not reset value")
}

func TestLoad_PrecedenceJSONEnvFlags(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"api_base_url": "https://json.example",
		"log_level":    "warn",
		"log_format":   "json",
	})
	t.Setenv("LINGUA_LOG_LEVEL", "error")
	t.Setenv("LINGUA_LOG_FORMAT", "text")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o := BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"--log-format", "json"}))

	cfg, err := Load(path, o)
	require.NoError(t, err)

	assert.Equal(t, "https://json.example", cfg.APIBaseURL, "json over defaults")
	assert.Equal(t, "error", cfg.LogLevel, "env over json")
	assert.Equal(t, "json", cfg.LogFormat, "flags over env")
}

func TestOverrides_NilIsNoop(t *testing.T) {
	var o *Overrides
	c := defaults()
	o.Apply(&c)
	assert.Equal(t, defaults(), c)
}
