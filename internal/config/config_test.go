package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("RATE_LIMIT_COMMENT", "")
	t.Setenv("JWT_TTL_MINUTES", "")
	t.Setenv("DEFAULT_SCORE_THRESHOLD", "")
	t.Setenv("CFP_SCAN_TIMEZONE", "")
	t.Setenv("CFP_SCAN_SCHEDULE", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, 10*time.Second, cfg.RateLimitComment)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.Equal(t, 70, cfg.DefaultScoreThreshold)
	assert.Equal(t, "0 8 * * *", cfg.CFPScanSchedule)
	assert.Equal(t, time.UTC, cfg.CFPScanLocation)
	assert.True(t, cfg.Database.Debug)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("RATE_LIMIT_COMMENT", "1m")
	t.Setenv("JWT_TTL_MINUTES", "15")
	t.Setenv("DEFAULT_SCORE_THRESHOLD", "120")
	t.Setenv("CFP_SCAN_TIMEZONE", "Asia/Jakarta")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.Database.Debug)
	assert.Equal(t, time.Minute, cfg.RateLimitComment)
	assert.Equal(t, 15*time.Minute, cfg.JWTTTL)
	assert.Equal(t, 120, cfg.DefaultScoreThreshold)
	assert.Equal(t, "Asia/Jakarta", cfg.CFPScanLocation.String())
	assert.Equal(t, "s3cret", cfg.JWTSecret)
}

func TestLoadRequiresJWTSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"RATE_LIMIT_COMMENT":      "soon",
		"JWT_TTL_MINUTES":         "-5",
		"DEFAULT_SCORE_THRESHOLD": "901",
		"CFP_SCAN_TIMEZONE":       "Mars/Olympus",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
