package config_test

import (
	"testing"

	"contentflow/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	// No config file in the temp dir: defaults and env vars apply.
	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Database.URI)
	assert.Equal(t, "processed-content-bucket", cfg.S3.ProcessedBucket)
	assert.Equal(t, 800, cfg.Pipeline.MaxWidth)
	assert.Equal(t, 800, cfg.Pipeline.MaxHeight)
	assert.Equal(t, 90, cfg.Pipeline.JPEGQuality)
	assert.Equal(t, "content_metadata", cfg.Pipeline.ContentCollection)
	assert.Equal(t, "user_analytics", cfg.Pipeline.AnalyticsCollection)
	assert.Equal(t, 50, cfg.Pipeline.GlobalScanLimit)
	assert.Equal(t, "example-user", cfg.Auth.DefaultUser)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("PIPELINE_JPEG_QUALITY", "75")
	t.Setenv("S3_PROCESSED_BUCKET", "staging-processed")

	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 75, cfg.Pipeline.JPEGQuality)
	assert.Equal(t, "staging-processed", cfg.S3.ProcessedBucket)
}
