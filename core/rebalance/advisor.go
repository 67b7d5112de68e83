package rebalance

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/veloops/stationd/core/logger"
	"github.com/veloops/stationd/core/model"
	"github.com/veloops/stationd/core/trend"
)

// Priority weights: the trend magnitude signals how fast the station is
// moving, severity how close it already is to the risk boundary.
const (
	slopeWeight    = 0.4
	severityWeight = 0.6
)

// Recommendation is one ranked add/remove suggestion for a station.
type Recommendation struct {
	StationID       string  `json:"station_id" csv:"station_id"`
	Name            string  `json:"name" csv:"name"`
	Area            string  `json:"area" csv:"area"`
	CurrentPickup   int     `json:"current_pickup" csv:"current_pickup"`
	PredictedPickup int     `json:"predicted_pickup" csv:"predicted_pickup"`
	Capacity        int     `json:"capacity" csv:"capacity"`
	NeedAdd         int     `json:"need_add,omitempty" csv:"need_add"`
	NeedRemove      int     `json:"need_remove,omitempty" csv:"need_remove"`
	Slope           float64 `json:"slope" csv:"slope"`
	Severity        float64 `json:"severity" csv:"severity"`
	Priority        float64 `json:"priority" csv:"priority"`
	HorizonMinutes  int     `json:"horizon_minutes" csv:"horizon_minutes"`
	PointsUsed      int     `json:"points_used" csv:"points_used"`
}

// need returns the magnitude the recommendation was emitted for.
func (r Recommendation) need() int {
	if r.NeedAdd > 0 {
		return r.NeedAdd
	}
	return r.NeedRemove
}

// Report is the outcome of one advisory run.
type Report struct {
	RunID           string           `json:"run_id"`
	GeneratedAt     time.Time        `json:"generated_at"`
	HorizonMinutes  int              `json:"horizon_minutes"`
	StationsScanned int              `json:"stations_scanned"`
	StationsSkipped int              `json:"stations_skipped"`
	Supply          []Recommendation `json:"supply"`
	Removal         []Recommendation `json:"removal"`
}

// Advisor scans the latest snapshot and produces ranked rebalancing lists.
type Advisor struct {
	forecaster *trend.Forecaster
	cfg        Config
	log        logger.Logger
	now        func() time.Time
}

// NewAdvisor creates an Advisor using the given forecaster and parameters.
func NewAdvisor(f *trend.Forecaster, cfg Config, log logger.Logger) *Advisor {
	return &Advisor{forecaster: f, cfg: cfg, log: log, now: time.Now}
}

// Compute forecasts every station with positive capacity in the snapshot and
// applies the empty-risk and full-risk rules independently, so a small
// station may appear on both lists. Stations whose forecast rests on fewer
// than 2 history points are skipped rather than guessed at. Both lists are
// sorted by (priority desc, need desc, station id asc) and cut to TopK.
func (a *Advisor) Compute(ctx context.Context, snapshot []model.StationSnapshot) (Report, error) {
	report := Report{
		RunID:          uuid.NewString(),
		GeneratedAt:    a.now(),
		HorizonMinutes: a.cfg.HorizonMinutes,
	}

	for _, st := range snapshot {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}
		capacity := st.Capacity()
		if capacity <= 0 {
			continue
		}
		report.StationsScanned++

		fc, err := a.forecaster.Predict(ctx, st.StationID, a.cfg.HorizonMinutes, a.cfg.MaxPoints)
		if err != nil {
			a.log.Errorf("forecast %s: %v", st.StationID, err)
			report.StationsSkipped++
			continue
		}
		if fc.PointsUsed < 2 {
			report.StationsSkipped++
			continue
		}

		predicted := fc.PredictedPickup
		emptyDocks := capacity - predicted
		base := Recommendation{
			StationID:       st.StationID,
			Name:            st.Name,
			Area:            st.Area,
			CurrentPickup:   st.PickupCount,
			PredictedPickup: predicted,
			Capacity:        capacity,
			Slope:           fc.Slope,
			HorizonMinutes:  a.cfg.HorizonMinutes,
			PointsUsed:      fc.PointsUsed,
		}

		if predicted <= a.cfg.EmptyThreshold {
			target := int(math.Round(float64(capacity) * a.cfg.TargetLowRatio))
			if target < 2 {
				target = 2
			}
			if needAdd := target - predicted; needAdd > 0 {
				rec := base
				rec.NeedAdd = needAdd
				rec.Severity = 1 - float64(predicted)/float64(capacity)
				rec.Priority = slopeWeight*math.Abs(fc.Slope) + severityWeight*rec.Severity
				report.Supply = append(report.Supply, rec)
			}
		}

		if emptyDocks <= a.cfg.FullThreshold {
			target := int(math.Round(float64(capacity) * a.cfg.TargetHighRatio))
			if target > capacity-2 {
				target = capacity - 2
			}
			if target < 0 {
				target = 0
			}
			if needRemove := predicted - target; needRemove > 0 {
				rec := base
				rec.NeedRemove = needRemove
				rec.Severity = 1 - float64(emptyDocks)/float64(capacity)
				rec.Priority = slopeWeight*math.Abs(fc.Slope) + severityWeight*rec.Severity
				report.Removal = append(report.Removal, rec)
			}
		}
	}

	report.Supply = rank(report.Supply, a.cfg.TopK)
	report.Removal = rank(report.Removal, a.cfg.TopK)
	return report, nil
}

// rank sorts recommendations by descending priority, then descending need,
// then ascending station id so equal-priority output is deterministic, and
// truncates to topK.
func rank(recs []Recommendation, topK int) []Recommendation {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Priority != recs[j].Priority {
			return recs[i].Priority > recs[j].Priority
		}
		if recs[i].need() != recs[j].need() {
			return recs[i].need() > recs[j].need()
		}
		return recs[i].StationID < recs[j].StationID
	})
	if len(recs) > topK {
		recs = recs[:topK]
	}
	return recs
}
