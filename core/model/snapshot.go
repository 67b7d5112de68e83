package model

import "time"

// StationSnapshot is one observation of a station taken during a poll cycle.
// Rows are immutable after write; only the retention job removes them.
type StationSnapshot struct {
	// ID is the storage insertion id. Zero until the row has been persisted.
	ID int64

	// StationID is the stable feed identifier for the station.
	StationID string
	Name      string
	Area      string
	Lat       float64
	Lng       float64

	// PickupCount is the number of bikes currently available to rent.
	PickupCount int
	// DockCount is the number of empty docks available to return a bike.
	DockCount int

	// CollectedAt is the poll time, set by the collector.
	CollectedAt time.Time
	// SourceUpdatedAt is the feed-reported update time. Nil when the feed
	// value was missing or unparseable.
	SourceUpdatedAt *time.Time
}

// Capacity is the total number of docks at the station.
func (s StationSnapshot) Capacity() int {
	return s.PickupCount + s.DockCount
}
