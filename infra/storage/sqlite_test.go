package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veloops/stationd/core/model"
	corestorage "github.com/veloops/stationd/core/storage"
	"github.com/veloops/stationd/infra/logger"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := New(Config{Path: filepath.Join(t.TempDir(), "stations.db")}, logger.NopLogger{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func snap(id string, pickup, dock int, at time.Time) model.StationSnapshot {
	return model.StationSnapshot{
		StationID:   id,
		Name:        "station " + id,
		Area:        "north",
		Lat:         25.04,
		Lng:         121.56,
		PickupCount: pickup,
		DockCount:   dock,
		CollectedAt: at,
	}
}

func TestAppendAndLatestPerStation(t *testing.T) {
	st := newTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)
	batch := []model.StationSnapshot{
		snap("s1", 3, 7, now),
		snap("s2", 0, 12, now),
	}
	require.NoError(t, st.Append(context.Background(), batch))

	latest, err := st.LatestPerStation(context.Background())
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "s1", latest[0].StationID)
	assert.Equal(t, 3, latest[0].PickupCount)
	assert.Equal(t, 7, latest[0].DockCount)
	assert.Equal(t, "station s1", latest[0].Name)
	assert.True(t, latest[0].CollectedAt.Equal(now))
	assert.Equal(t, "s2", latest[1].StationID)
}

func TestLatestPerStationPicksNewestRow(t *testing.T) {
	st := newTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, st.Append(context.Background(), []model.StationSnapshot{
		snap("s1", 1, 9, now.Add(-2*time.Minute)),
		snap("s1", 2, 8, now.Add(-time.Minute)),
		snap("s1", 3, 7, now),
	}))

	latest, err := st.LatestPerStation(context.Background())
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, 3, latest[0].PickupCount)
}

func TestLatestPerStationTieBreaksByInsertionID(t *testing.T) {
	st := newTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)
	// Duplicate poll: same station, same collection time.
	require.NoError(t, st.Append(context.Background(), []model.StationSnapshot{
		snap("s1", 4, 6, now),
		snap("s1", 5, 5, now),
	}))

	latest, err := st.LatestPerStation(context.Background())
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, 5, latest[0].PickupCount)
}

func TestHistoryReturnsNewestWindow(t *testing.T) {
	st := newTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)
	var batch []model.StationSnapshot
	for i := 0; i < 5; i++ {
		batch = append(batch, snap("s1", i, 10-i, now.Add(time.Duration(i)*time.Minute)))
	}
	require.NoError(t, st.Append(context.Background(), batch))

	asc, err := st.History(context.Background(), "s1", 3, corestorage.OrderAsc)
	require.NoError(t, err)
	require.Len(t, asc, 3)
	// Ascending still means the most recent three rows, oldest first.
	assert.Equal(t, 2, asc[0].PickupCount)
	assert.Equal(t, 4, asc[2].PickupCount)

	desc, err := st.History(context.Background(), "s1", 3, corestorage.OrderDesc)
	require.NoError(t, err)
	require.Len(t, desc, 3)
	assert.Equal(t, 4, desc[0].PickupCount)
	assert.Equal(t, 2, desc[2].PickupCount)
}

func TestHistoryUnknownStation(t *testing.T) {
	st := newTestStore(t)
	rows, err := st.History(context.Background(), "nope", 10, corestorage.OrderAsc)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRetainDropsOnlyOldRows(t *testing.T) {
	st := newTestStore(t)
	now := time.Now().UTC()
	require.NoError(t, st.Append(context.Background(), []model.StationSnapshot{
		snap("s1", 1, 9, now.AddDate(0, 0, -6)),
		snap("s1", 2, 8, now.AddDate(0, 0, -1)),
	}))

	removed, err := st.Retain(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	rows, err := st.History(context.Background(), "s1", 10, corestorage.OrderAsc)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].PickupCount)

	// Idempotent: a second pass has nothing left to delete.
	removed, err = st.Retain(context.Background(), 5)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestAppendEmptyBatchIsNoop(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.Append(context.Background(), nil))

	latest, err := st.LatestPerStation(context.Background())
	require.NoError(t, err)
	assert.Empty(t, latest)
}

func TestSourceUpdateTimeRoundTrip(t *testing.T) {
	st := newTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)
	updated := now.Add(-30 * time.Second)

	withTime := snap("s1", 2, 8, now)
	withTime.SourceUpdatedAt = &updated
	withoutTime := snap("s2", 3, 7, now)
	require.NoError(t, st.Append(context.Background(), []model.StationSnapshot{withTime, withoutTime}))

	latest, err := st.LatestPerStation(context.Background())
	require.NoError(t, err)
	require.Len(t, latest, 2)
	require.NotNil(t, latest[0].SourceUpdatedAt)
	assert.True(t, latest[0].SourceUpdatedAt.Equal(updated))
	assert.Nil(t, latest[1].SourceUpdatedAt)
}
