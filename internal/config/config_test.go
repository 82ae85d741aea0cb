package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("FIREBASE_PROJECT_ID", "platepal-test")
	t.Setenv("FIREBASE_PRIVATE_KEY", "a2V5")
	t.Setenv("FIREBASE_CLIENT_EMAIL", "svc@platepal-test.iam.gserviceaccount.com")
	t.Setenv("OPENROUTER_API_KEY", "or-key")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, int64(5), cfg.Server.MaxUploadSizeMB)
	assert.Equal(t, 24*time.Hour, cfg.JWT.AccessTokenExpiry)
	assert.Equal(t, int64(3), cfg.Tracking.FreeDailyAnalyses)
	assert.Equal(t, 10*time.Minute, cfg.Tracking.ProgressCacheTTL)
	assert.False(t, cfg.OTEL.Enabled)
	assert.Equal(t, time.UTC, cfg.Tracking.Location())
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_TIMEZONE", "Asia/Jakarta")
	t.Setenv("PROGRESS_CACHE_TTL", "90s")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("FREE_DAILY_ANALYSES", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 90*time.Second, cfg.Tracking.ProgressCacheTTL)
	assert.True(t, cfg.OTEL.Enabled)
	assert.Equal(t, int64(3), cfg.Tracking.FreeDailyAnalyses)
	assert.Equal(t, "Asia/Jakarta", cfg.Tracking.Location().String())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"missing jwt secret", map[string]string{"JWT_SECRET": ""}, "JWT_SECRET"},
		{"missing openrouter key", map[string]string{"OPENROUTER_API_KEY": ""}, "OPENROUTER_API_KEY"},
		{"unknown timezone", map[string]string{"APP_TIMEZONE": "Mars/Olympus"}, "APP_TIMEZONE"},
		{"premium quota below free quota", map[string]string{"FREE_DAILY_ANALYSES": "10", "PREMIUM_DAILY_ANALYSES": "5"}, "PREMIUM_DAILY_ANALYSES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
