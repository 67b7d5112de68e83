// Package storage defines the snapshot persistence contract. The collector is
// the only writer; the advisor and any external consumers (dashboard,
// clustering job) read through the same interface.
package storage

import (
	"context"
	"time"

	"github.com/veloops/stationd/core/model"
)

// Order selects the time direction of a history query.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// Store persists station snapshots and serves time-series queries.
type Store interface {
	// Append bulk-inserts a batch of snapshots. The batch is all-or-nothing:
	// a failed insert rolls the whole statement back. Duplicate
	// (station_id, collection_time) rows are permitted, so row counts are
	// advisory only.
	Append(ctx context.Context, batch []model.StationSnapshot) error

	// LatestPerStation returns exactly one row per distinct station id: the
	// row with the maximum collection time, ties broken by insertion id.
	LatestPerStation(ctx context.Context) ([]model.StationSnapshot, error)

	// History returns up to limit most recent rows for the station, ordered
	// ascending or descending by collection time.
	History(ctx context.Context, stationID string, limit int, order Order) ([]model.StationSnapshot, error)

	// Retain deletes rows with a collection time older than now minus
	// maxAgeDays and returns the number removed. Idempotent.
	Retain(ctx context.Context, maxAgeDays int) (int64, error)

	Close() error
}

// Cutoff returns the retention boundary for the given age in days.
func Cutoff(now time.Time, maxAgeDays int) time.Time {
	return now.AddDate(0, 0, -maxAgeDays)
}
