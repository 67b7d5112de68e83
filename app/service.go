// Package app assembles the pipeline from configuration and runs it.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/veloops/stationd/config"
	coremetrics "github.com/veloops/stationd/core/metrics"
	"github.com/veloops/stationd/core/rebalance"
	"github.com/veloops/stationd/core/sched"
	corestorage "github.com/veloops/stationd/core/storage"
	"github.com/veloops/stationd/core/trend"
	"github.com/veloops/stationd/infra/feed"
	"github.com/veloops/stationd/infra/logger"
	"github.com/veloops/stationd/infra/metrics"
	"github.com/veloops/stationd/infra/storage"
	"github.com/veloops/stationd/internal/eventbus"
)

// Service owns the store, the scheduler and the advisor. The store handle is
// constructed once here, injected everywhere and closed at shutdown.
type Service struct {
	cfg       *config.Config
	store     corestorage.Store
	scheduler *sched.Scheduler
	advisor   *rebalance.Advisor
	sink      coremetrics.MetricsSink
	bus       *eventbus.Bus
	log       logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	log := logger.New("service")

	store, err := storage.New(cfg.Storage, logger.New("storage"))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink()
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink coremetrics.MetricsSink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	collector := feed.NewClient(cfg.Feed, logger.New("collector"))
	scheduler := sched.New(collector, store, cfg.Scheduler, sink, logger.New("scheduler"))

	forecaster := trend.NewForecaster(trend.NewEstimator(store))
	advisor := rebalance.NewAdvisor(forecaster, cfg.Advisor, logger.New("advisor"))

	return &Service{
		cfg:       cfg,
		store:     store,
		scheduler: scheduler,
		advisor:   advisor,
		sink:      sink,
		bus:       eventbus.New(),
		log:       log,
	}, nil
}

// Store exposes the shared store handle for read-only consumers.
func (s *Service) Store() corestorage.Store { return s.store }

// Reports exposes the advisory report stream.
func (s *Service) Reports() <-chan rebalance.Report { return s.bus.Subscribe() }

// Run starts the pipeline and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.cfg.Advisor.IntervalSeconds > 0 {
		go s.advisoryLoop(ctx)
	}
	go s.logReports(ctx)

	return s.scheduler.Run(ctx)
}

// CollectOnce runs a single poll cycle.
func (s *Service) CollectOnce(ctx context.Context) {
	s.scheduler.PollOnce(ctx)
}

// RunAdvisory computes one advisory report from the latest snapshot,
// records it and publishes it on the bus.
func (s *Service) RunAdvisory(ctx context.Context) (rebalance.Report, error) {
	start := time.Now()
	snapshot, err := s.store.LatestPerStation(ctx)
	if err != nil {
		return rebalance.Report{}, fmt.Errorf("latest snapshot: %w", err)
	}
	report, err := s.advisor.Compute(ctx, snapshot)
	if err != nil {
		return rebalance.Report{}, err
	}

	if rec, ok := s.sink.(coremetrics.AdvisoryRecorder); ok {
		ev := coremetrics.AdvisoryEvent{
			RunID:          report.RunID,
			Scanned:        report.StationsScanned,
			Skipped:        report.StationsSkipped,
			SupplyCount:    len(report.Supply),
			RemovalCount:   len(report.Removal),
			HorizonMinutes: report.HorizonMinutes,
			Duration:       time.Since(start),
			Time:           start,
		}
		if err := rec.RecordAdvisory(ev); err != nil {
			s.log.Warnf("record advisory event: %v", err)
		}
	}

	s.bus.Publish(report)
	return report, nil
}

// advisoryLoop periodically publishes advisory reports. The advisor only
// reads, so running beside the scheduler is safe.
func (s *Service) advisoryLoop(ctx context.Context) {
	tick := time.NewTicker(time.Duration(s.cfg.Advisor.IntervalSeconds) * time.Second)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			if _, err := s.RunAdvisory(ctx); err != nil {
				s.log.Errorf("advisory run: %v", err)
			}
		}
	}
}

func (s *Service) logReports(ctx context.Context) {
	reports := s.bus.Subscribe()
	defer s.bus.Unsubscribe(reports)
	for {
		select {
		case <-ctx.Done():
			return
		case report, ok := <-reports:
			if !ok {
				return
			}
			s.log.Debugw("advisory report", map[string]any{
				"run_id":  report.RunID,
				"scanned": report.StationsScanned,
				"skipped": report.StationsSkipped,
				"supply":  len(report.Supply),
				"removal": len(report.Removal),
			})
		}
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	return s.store.Close()
}
