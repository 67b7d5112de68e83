package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veloops/stationd/config"
	"github.com/veloops/stationd/core/model"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	cfg := &config.Config{}
	cfg.Feed.URL = "http://127.0.0.1:0/feed"
	cfg.Feed.SetDefaults()
	cfg.Storage.Path = filepath.Join(t.TempDir(), "stations.db")
	cfg.Scheduler.SetDefaults()
	cfg.Advisor.SetDefaults()
	cfg.Metrics.SetDefaults()

	svc, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestRunAdvisoryEmptyStore(t *testing.T) {
	svc := newTestService(t)

	report, err := svc.RunAdvisory(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, report.RunID)
	assert.Zero(t, report.StationsScanned)
	assert.Empty(t, report.Supply)
	assert.Empty(t, report.Removal)
}

func TestRunAdvisoryPublishesReport(t *testing.T) {
	svc := newTestService(t)
	reports := svc.Reports()

	base := time.Now().UTC().Add(-3 * time.Minute)
	var batch []model.StationSnapshot
	for i, pickup := range []int{8, 6, 4} {
		batch = append(batch, model.StationSnapshot{
			StationID:   "s1",
			PickupCount: pickup,
			DockCount:   10 - pickup,
			CollectedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	require.NoError(t, svc.Store().Append(context.Background(), batch))

	report, err := svc.RunAdvisory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.StationsScanned)

	select {
	case published := <-reports:
		assert.Equal(t, report.RunID, published.RunID)
	case <-time.After(time.Second):
		t.Fatal("report was not published")
	}
}
