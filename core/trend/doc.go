// Package trend estimates the short-term drift of available-bike counts and
// extrapolates it into capacity-clamped forecasts. Estimates are smoothed by
// averaging local slopes over consecutive sample pairs, which tolerates
// single-interval noise better than an endpoint-to-endpoint slope.
package trend
