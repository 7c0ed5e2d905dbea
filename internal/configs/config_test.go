package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark47B/opspilot/internal/domain/scoring"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	cfg, err := FromViper(New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreSQLite, cfg.Store.Driver)
	assert.Contains(t, cfg.Store.PostgresURL, "localhost:5432")
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 128, cfg.Cache.VectorDims)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 0.80, cfg.Cache.SimilarityThreshold)
	assert.Equal(t, scoring.DefaultWeights(), cfg.Scoring.Weights)
	assert.Equal(t, scoring.DefaultThresholds(), cfg.Scoring.Thresholds)
	assert.Equal(t, 30*time.Second, cfg.Timeouts.Collect)
	assert.Equal(t, 45*time.Second, cfg.Timeouts.Reasoning)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.CORSOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SCORE_W4", "0.5")
	t.Setenv("THRESHOLD_STALE", "0.2")
	t.Setenv("SEMANTIC_CACHE", "off")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("REPORT_BASE_URL", "https://reports.example.com/")

	cfg, err := FromViper(New())
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, 0.5, cfg.Scoring.Weights.Stale)
	assert.Equal(t, 0.2, cfg.Scoring.Thresholds.Stale)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, StorePostgres, cfg.Store.Driver)
	assert.Contains(t, cfg.Store.PostgresURL, "@postgres:5432")
	assert.Equal(t, "https://reports.example.com", cfg.Store.ReportBaseURL)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string][2]string{
		"negative weight":   {"SCORE_W1", "-1"},
		"threshold above 1": {"THRESHOLD_REOPEN", "1.5"},
		"bad log level":     {"LOG_LEVEL", "verbose"},
		"bad driver":        {"STORE_DRIVER", "mongo"},
		"tiny vector":       {"VECTOR_DIMS", "4"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])

			_, err := FromViper(New())
			assert.Error(t, err)
		})
	}
}
