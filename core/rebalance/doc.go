// Package rebalance turns station forecasts into ranked add/remove
// recommendations. A station close to running empty gets a supply
// recommendation, a station close to filling up gets a removal one; both can
// apply at once for small capacities. Recommendations are transient: each
// advisory run produces a fresh report and nothing is persisted.
package rebalance
