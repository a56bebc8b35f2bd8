package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "SCORE_FALLBACK_MIN", "SCORE_FALLBACK_MAX", "SCORE_CLAMP", "QDRANT_URL", "INDEX_POLL_INTERVAL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, DefaultFallbackMin, cfg.Scoring.FallbackMin)
	assert.Equal(t, DefaultFallbackMax, cfg.Scoring.FallbackMax)
	assert.True(t, cfg.Scoring.Clamp)
	assert.False(t, cfg.Scoring.StaleWriteGuard)
	assert.False(t, cfg.Qdrant.Enabled())
	assert.Equal(t, 30*time.Second, cfg.Worker.PollInterval)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SCORE_FALLBACK_MIN", "20")
	t.Setenv("SCORE_FALLBACK_MAX", "25")
	t.Setenv("SCORE_CLAMP", "false")
	t.Setenv("SCORE_STALE_WRITE_GUARD", "true")
	t.Setenv("QDRANT_URL", "http://qdrant:6333")
	t.Setenv("GEMINI_TEMPERATURE", "0.7")
	t.Setenv("INDEX_POLL_INTERVAL", "not-a-duration")

	cfg := Load()

	assert.Equal(t, 20, cfg.Scoring.FallbackMin)
	assert.Equal(t, 25, cfg.Scoring.FallbackMax)
	assert.False(t, cfg.Scoring.Clamp)
	assert.True(t, cfg.Scoring.StaleWriteGuard)
	assert.True(t, cfg.Qdrant.Enabled())
	assert.InDelta(t, 0.7, cfg.Gemini.Temperature, 0.0001)
	assert.Equal(t, 30*time.Second, cfg.Worker.PollInterval)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "inverted fallback bounds", mutate: func(c *Config) { c.Scoring.FallbackMin, c.Scoring.FallbackMax = 40, 10 }},
		{name: "empty fallback range", mutate: func(c *Config) { c.Scoring.FallbackMax = c.Scoring.FallbackMin }},
		{name: "fallback above 100", mutate: func(c *Config) { c.Scoring.FallbackMax = 101 }},
		{name: "no workers", mutate: func(c *Config) { c.Worker.Concurrency = 0 }},
		{name: "no upload size", mutate: func(c *Config) { c.Storage.MaxFileSize = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Load()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host: "db", Port: "5433", User: "u", Password: "p", DBName: "talent", SSLMode: "require",
	}}

	assert.Equal(t, "host=db port=5433 user=u password=p dbname=talent sslmode=require", cfg.GetDatabaseDSN())
}
