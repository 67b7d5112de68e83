package feed

import (
	"strconv"
	"strings"
	"time"

	"github.com/veloops/stationd/core/model"
)

// Accepted layouts for the feed-reported update time.
const (
	updateTimeLayout        = "2006-01-02 15:04:05"
	updateTimeCompactLayout = "20060102150405"
)

// normalizeRecord converts one raw feed object into a snapshot. Missing or
// invalid numerics default to 0, coordinates to 0.0 and the update time to
// nil, so a single bad field never loses the record. Records without a
// station id carry no usable key and are reported as unusable.
func normalizeRecord(rec map[string]any, collectedAt time.Time) (model.StationSnapshot, bool) {
	stationID := toString(rec["sno"])
	if stationID == "" {
		return model.StationSnapshot{}, false
	}

	pickup := toInt(rec["available_rent_bikes"])
	if pickup < 0 {
		pickup = 0
	}
	dock := toInt(rec["available_return_bikes"])
	if dock < 0 {
		dock = 0
	}

	updateRaw := toString(rec["mday"])
	if updateRaw == "" {
		updateRaw = toString(rec["updateTime"])
	}

	return model.StationSnapshot{
		StationID:       stationID,
		Name:            toString(rec["sna"]),
		Area:            toString(rec["sarea"]),
		Lat:             toFloat(rec["latitude"]),
		Lng:             toFloat(rec["longitude"]),
		PickupCount:     pickup,
		DockCount:       dock,
		CollectedAt:     collectedAt,
		SourceUpdatedAt: parseUpdateTime(updateRaw),
	}, true
}

// parseUpdateTime parses the feed update time against the two layouts the
// upstream emits. Unparseable values become nil rather than failing the
// record.
func parseUpdateTime(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if strings.Contains(raw, " ") {
		if t, err := time.ParseInLocation(updateTimeLayout, raw, time.Local); err == nil {
			return &t
		}
	}
	if len(raw) == len(updateTimeCompactLayout) && isDigits(raw) {
		if t, err := time.ParseInLocation(updateTimeCompactLayout, raw, time.Local); err == nil {
			return &t
		}
	}
	return nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

func toString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func toInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i
		}
	}
	return 0
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return f
		}
	}
	return 0
}
