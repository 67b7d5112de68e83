package trend

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/veloops/stationd/core/storage"
)

// minUsablePoints is the smallest history size a slope is computed from.
// Below it the estimate falls back to the latest observation with zero slope.
const minUsablePoints = 3

// Estimate is the outcome of a trend computation for one station.
type Estimate struct {
	// Slope is the smoothed drift of the pickup count in bikes per minute.
	Slope float64
	// CurrentPickup and Capacity come from the most recent usable snapshot.
	CurrentPickup int
	Capacity      int
	// PointsUsed is the number of history rows that survived filtering.
	// Callers should treat estimates with fewer than 2 points as noise.
	PointsUsed int
}

// Estimator computes smoothed pickup-count trends from stored history.
type Estimator struct {
	store storage.Store
}

// NewEstimator creates an Estimator reading from the given store.
func NewEstimator(store storage.Store) *Estimator {
	return &Estimator{store: store}
}

// EstimateTrend fetches up to maxPoints recent snapshots for the station,
// oldest first, and returns the mean of the local slopes of consecutive
// pairs. Pairs with a non-positive time delta (duplicate or out-of-order
// rows) are skipped. With fewer than 3 usable points the slope is 0 and the
// latest surviving point provides the current state.
func (e *Estimator) EstimateTrend(ctx context.Context, stationID string, maxPoints int) (Estimate, error) {
	rows, err := e.store.History(ctx, stationID, maxPoints, storage.OrderAsc)
	if err != nil {
		return Estimate{}, fmt.Errorf("history for %s: %w", stationID, err)
	}

	// Rows without a collection time carry no ordering information.
	usable := rows[:0]
	for _, r := range rows {
		if r.CollectedAt.IsZero() {
			continue
		}
		usable = append(usable, r)
	}

	if len(usable) < minUsablePoints {
		est := Estimate{PointsUsed: len(usable)}
		if len(usable) > 0 {
			last := usable[len(usable)-1]
			est.CurrentPickup = last.PickupCount
			est.Capacity = last.Capacity()
		}
		return est, nil
	}

	var slopes []float64
	for i := 1; i < len(usable); i++ {
		dtMin := usable[i].CollectedAt.Sub(usable[i-1].CollectedAt).Minutes()
		if dtMin <= 0 {
			continue
		}
		slopes = append(slopes, float64(usable[i].PickupCount-usable[i-1].PickupCount)/dtMin)
	}

	slope := 0.0
	if len(slopes) > 0 {
		slope = stat.Mean(slopes, nil)
	}

	last := usable[len(usable)-1]
	return Estimate{
		Slope:         slope,
		CurrentPickup: last.PickupCount,
		Capacity:      last.Capacity(),
		PointsUsed:    len(usable),
	}, nil
}
