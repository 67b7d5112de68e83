package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRecordFullRecord(t *testing.T) {
	now := time.Now()
	rec := map[string]any{
		"sno":                    "500101001",
		"sna":                    "YouBike2.0_Plaza",
		"sarea":                  "Daan",
		"latitude":               25.02605,
		"longitude":              121.5436,
		"available_rent_bikes":   float64(12),
		"available_return_bikes": float64(16),
		"mday":                   "2025-06-01 08:30:00",
	}

	snap, ok := normalizeRecord(rec, now)
	require.True(t, ok)
	assert.Equal(t, "500101001", snap.StationID)
	assert.Equal(t, "YouBike2.0_Plaza", snap.Name)
	assert.Equal(t, "Daan", snap.Area)
	assert.InDelta(t, 25.02605, snap.Lat, 1e-9)
	assert.Equal(t, 12, snap.PickupCount)
	assert.Equal(t, 16, snap.DockCount)
	assert.Equal(t, 28, snap.Capacity())
	assert.Equal(t, now, snap.CollectedAt)
	require.NotNil(t, snap.SourceUpdatedAt)
	want := time.Date(2025, 6, 1, 8, 30, 0, 0, time.Local)
	assert.True(t, snap.SourceUpdatedAt.Equal(want))
}

func TestNormalizeRecordDefaults(t *testing.T) {
	snap, ok := normalizeRecord(map[string]any{
		"sno":                  "s1",
		"available_rent_bikes": "not-a-number",
		"latitude":             "garbage",
	}, time.Now())
	require.True(t, ok)
	assert.Zero(t, snap.PickupCount)
	assert.Zero(t, snap.DockCount)
	assert.Zero(t, snap.Lat)
	assert.Zero(t, snap.Lng)
	assert.Empty(t, snap.Name)
	assert.Nil(t, snap.SourceUpdatedAt)
}

func TestNormalizeRecordStringNumerics(t *testing.T) {
	snap, ok := normalizeRecord(map[string]any{
		"sno":                    "s1",
		"available_rent_bikes":   "7",
		"available_return_bikes": "3",
		"latitude":               "25.03",
	}, time.Now())
	require.True(t, ok)
	assert.Equal(t, 7, snap.PickupCount)
	assert.Equal(t, 3, snap.DockCount)
	assert.InDelta(t, 25.03, snap.Lat, 1e-9)
}

func TestNormalizeRecordMissingStationID(t *testing.T) {
	_, ok := normalizeRecord(map[string]any{"sna": "nameless"}, time.Now())
	assert.False(t, ok)
}

func TestParseUpdateTimeLayouts(t *testing.T) {
	got := parseUpdateTime("2025-06-01 08:30:00")
	require.NotNil(t, got)
	assert.True(t, got.Equal(time.Date(2025, 6, 1, 8, 30, 0, 0, time.Local)))

	got = parseUpdateTime("20250601083000")
	require.NotNil(t, got)
	assert.True(t, got.Equal(time.Date(2025, 6, 1, 8, 30, 0, 0, time.Local)))
}

func TestParseUpdateTimeFallsBackToUpdateTimeField(t *testing.T) {
	snap, ok := normalizeRecord(map[string]any{
		"sno":        "s1",
		"updateTime": "20250601083000",
	}, time.Now())
	require.True(t, ok)
	require.NotNil(t, snap.SourceUpdatedAt)
}

func TestParseUpdateTimeInvalid(t *testing.T) {
	for _, raw := range []string{"", "   ", "yesterday", "2025/06/01 08:30:00", "123", "2025060108300x"} {
		assert.Nil(t, parseUpdateTime(raw), "raw %q", raw)
	}
}
