package trend

import (
	"context"
	"math"
)

// Forecast extends an Estimate with the extrapolated pickup count.
type Forecast struct {
	Estimate
	// PredictedPickup is the expected pickup count after HorizonMinutes,
	// clamped to [0, Capacity].
	PredictedPickup int
	HorizonMinutes  int
}

// Forecaster extrapolates the current station state forward by a horizon.
// It is stateless and cheap enough to call once per requested horizon.
type Forecaster struct {
	est *Estimator
}

// NewForecaster creates a Forecaster on top of the given estimator.
func NewForecaster(est *Estimator) *Forecaster {
	return &Forecaster{est: est}
}

// Predict estimates the station trend and projects it minutesAhead forward.
// The result carries the estimator diagnostics so callers can judge
// confidence before acting on the prediction.
func (f *Forecaster) Predict(ctx context.Context, stationID string, minutesAhead, maxPoints int) (Forecast, error) {
	est, err := f.est.EstimateTrend(ctx, stationID, maxPoints)
	if err != nil {
		return Forecast{}, err
	}

	predicted := int(math.Round(float64(est.CurrentPickup) + est.Slope*float64(minutesAhead)))
	if predicted < 0 {
		predicted = 0
	}
	if predicted > est.Capacity {
		predicted = est.Capacity
	}

	return Forecast{
		Estimate:        est,
		PredictedPickup: predicted,
		HorizonMinutes:  minutesAhead,
	}, nil
}
