package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{
		"SERVER_HOST", "SERVER_PORT", "OCR_ENGINE", "OCR_WORKERS", "OCR_TIMEOUT",
		"EXTRACT_TIMEOUT", "DATABASE_URL", "REDIS_URL", "SEED_DEMO", "SHARE_LINK_TTL",
		"SIMILARITY_ALGORITHM", "LOG_LEVEL", "LOG_FORMAT", "SERVER_ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:5000", cfg.HTTP.Addr())
	assert.Equal(t, "tesseract", cfg.OCR.Engine)
	assert.Equal(t, 4, cfg.OCR.Workers)
	assert.Equal(t, 20*time.Second, cfg.OCR.Timeout)
	assert.Equal(t, 90*time.Second, cfg.OCR.ExtractTimeout)
	assert.Equal(t, int64(10<<20), cfg.HTTP.MaxUploadBytes)
	assert.Equal(t, "securekyc:audit", cfg.Redis.AuditKey)
	assert.Equal(t, 15*time.Minute, cfg.Auth.ShareLinkTTL)
	assert.Equal(t, "fuzzy", cfg.Similarity)
	assert.True(t, cfg.SeedDemo)
	assert.Empty(t, cfg.Store.DatabaseURL)
	assert.Nil(t, cfg.HTTP.AllowedOrigins())
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("OCR_ENGINE", "Vision")
	t.Setenv("OCR_WORKERS", "8")
	t.Setenv("OCR_TIMEOUT", "5s")
	t.Setenv("SEED_DEMO", "false")
	t.Setenv("PUBLIC_BASE_URL", "https://kyc.example.com/")
	t.Setenv("SERVER_ALLOWED_ORIGINS", " https://a.example.com ,,https://b.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "vision", cfg.OCR.Engine)
	assert.Equal(t, 8, cfg.OCR.Workers)
	assert.Equal(t, 5*time.Second, cfg.OCR.Timeout)
	assert.False(t, cfg.SeedDemo)
	assert.Equal(t, "https://kyc.example.com", cfg.Auth.PublicBaseURL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.HTTP.AllowedOrigins())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"SERVER_PORT":       "70000",
		"OCR_WORKERS":       "0",
		"OCR_TIMEOUT":       "soon",
		"SEED_DEMO":         "maybe",
		"OCR_ENGINE":        "paddle",
		"DB_MAX_IDLE_CONNS": "-1",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(key, val)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key[:4])
		})
	}
}
