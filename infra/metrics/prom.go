// Package metrics provides the sink implementations: Prometheus, InfluxDB
// and a fan-out combining them.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/veloops/stationd/core/metrics"
)

// PromSink records pipeline cycle events in Prometheus metrics.
type PromSink struct {
	polls        *prometheus.CounterVec
	rows         prometheus.Counter
	pollDuration prometheus.Histogram
	retained     prometheus.Counter
	advisories   prometheus.Counter
	listSizes    *prometheus.GaugeVec
	stations     prometheus.Gauge
}

// NewPromSink registers pipeline metrics on the default Prometheus
// registerer. The metrics server is started separately.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global one.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feed_poll_cycles_total",
			Help: "Total number of poll cycles by outcome",
		}, []string{"success"}),
		rows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "snapshot_rows_inserted_total",
			Help: "Total number of snapshot rows written to storage",
		}),
		pollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "feed_poll_duration_seconds",
			Help:    "Duration of poll cycles including retries",
			Buckets: prometheus.DefBuckets,
		}),
		retained: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "retention_rows_deleted_total",
			Help: "Total number of snapshot rows removed by retention",
		}),
		advisories: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "advisory_runs_total",
			Help: "Total number of advisory runs",
		}),
		listSizes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "advisory_recommendations",
			Help: "Recommendations emitted by the latest advisory run",
		}, []string{"list"}),
		stations: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stations_tracked",
			Help: "Stations seen in the latest successful poll",
		}),
	}

	for _, c := range []prometheus.Collector{
		s.polls, s.rows, s.pollDuration, s.retained, s.advisories, s.listSizes, s.stations,
	} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}
	return s, nil
}

// RecordPoll counts the cycle and tracks rows and duration.
func (s *PromSink) RecordPoll(ev coremetrics.PollEvent) error {
	s.polls.WithLabelValues(strconv.FormatBool(ev.Success)).Inc()
	s.pollDuration.Observe(ev.Duration.Seconds())
	if ev.Success && ev.Rows > 0 {
		s.rows.Add(float64(ev.Rows))
		s.stations.Set(float64(ev.Stations))
	}
	return nil
}

// RecordRetention counts removed rows.
func (s *PromSink) RecordRetention(ev coremetrics.RetentionEvent) error {
	s.retained.Add(float64(ev.Removed))
	return nil
}

// RecordAdvisory counts the run and exposes the latest list sizes.
func (s *PromSink) RecordAdvisory(ev coremetrics.AdvisoryEvent) error {
	s.advisories.Inc()
	s.listSizes.WithLabelValues("supply").Set(float64(ev.SupplyCount))
	s.listSizes.WithLabelValues("removal").Set(float64(ev.RemovalCount))
	return nil
}
