package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_ENV", "missing")
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "release", cfg.Mode)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 10, cfg.Capacity)
	assert.Equal(t, int64(65536), cfg.ReadLimit)
	assert.Equal(t, 54*time.Second, cfg.PingPeriod)
	assert.Equal(t, "kick", cfg.Backpressure)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, "http://django:8000", cfg.Content.BaseURL)
	assert.Equal(t, "Token", cfg.Content.AuthScheme)
	assert.Equal(t, 30*time.Second, cfg.Content.Timeout)
	assert.Equal(t, "/api/posts", cfg.Content.PostsPrefix)
	assert.Equal(t, 30, cfg.ConnectRate.Limit)
	assert.Equal(t, time.Minute, cfg.ConnectRate.Interval)
	assert.True(t, cfg.ContentEnabled())
}

func TestLoad_EnvAndFlags(t *testing.T) {
	t.Setenv("CONFIG_ENV", "missing")
	t.Setenv("ROOMRELAY_CAPACITY", "5")
	t.Setenv("ROOMRELAY_PORT", "7000")
	t.Setenv("ROOMRELAY_CONTENT_TIMEOUT", "5s")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Capacity)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.Content.Timeout)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--port=9000"}))
	cfg, err = Load(fs)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port, "flag beats env")
	assert.Equal(t, 5, cfg.Capacity, "unchanged flag keeps env value")
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("CONFIG_ENV", "missing")
	t.Setenv("ROOMRELAY_BACKPRESSURE", "explode")
	_, err := Load(nil)
	assert.ErrorContains(t, err, "invalid config")
}
