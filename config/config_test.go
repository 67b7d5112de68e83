package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadYAMLWithDefaults(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
feed:
  url: https://example.com/stations.json
storage:
  path: /tmp/stations.db
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/stations.json", cfg.Feed.URL)
	assert.Equal(t, "/tmp/stations.db", cfg.Storage.Path)
	// Defaults fill everything the file leaves out.
	assert.Equal(t, 10, cfg.Feed.TimeoutSeconds)
	assert.Equal(t, 3, cfg.Feed.Retry.MaxAttempts)
	assert.Equal(t, 60, cfg.Scheduler.PollIntervalSeconds)
	assert.Equal(t, 5, cfg.Scheduler.RetentionMaxAgeDays)
	assert.Equal(t, 30, cfg.Advisor.HorizonMinutes)
	assert.Equal(t, 0.40, cfg.Advisor.TargetLowRatio)
	assert.Equal(t, 20, cfg.Advisor.TopK)
	assert.Equal(t, ":9090", cfg.Metrics.PrometheusAddr)
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{
  "feed": {"url": "https://example.com/feed", "timeout_seconds": 5},
  "advisor": {"horizon_minutes": 45, "top_k": 10}
}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Feed.TimeoutSeconds)
	assert.Equal(t, 45, cfg.Advisor.HorizonMinutes)
	assert.Equal(t, 10, cfg.Advisor.TopK)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("STATIOND_FEED__URL", "https://override.example.com/feed")
	path := writeConfig(t, "config.yaml", `
feed:
  url: https://example.com/stations.json
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://override.example.com/feed", cfg.Feed.URL)
}

func TestLoadRejectsMissingFeedURL(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
scheduler:
  poll_interval_seconds: 30
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "feed url")
}

func TestLoadRejectsBadRatio(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
feed:
  url: https://example.com/feed
advisor:
  target_low_ratio: 1.5
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := writeConfig(t, "config.toml", "feed = 1")
	_, err := Load(path)
	assert.Error(t, err)
}
