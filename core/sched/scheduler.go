// Package sched drives the ingestion pipeline: a short poll cycle and a
// longer retention cycle multiplexed on a single goroutine, so the two can
// never overlap. A cycle that overruns its interval delays the next tick, it
// is never skipped or run concurrently. Every cycle is a failure-isolation
// boundary: errors are logged and recorded, the loop always survives.
package sched

import (
	"context"
	"time"

	"github.com/veloops/stationd/core/logger"
	"github.com/veloops/stationd/core/metrics"
	"github.com/veloops/stationd/core/model"
	"github.com/veloops/stationd/core/storage"
)

// Collector produces one normalized snapshot batch per call. An empty batch
// with a nil error is a valid outcome and must not be persisted.
type Collector interface {
	Poll(ctx context.Context) ([]model.StationSnapshot, error)
}

// Scheduler runs the poll and retention cycles against a shared store.
type Scheduler struct {
	collector Collector
	store     storage.Store
	cfg       Config
	sink      metrics.MetricsSink
	log       logger.Logger
}

// New creates a Scheduler. A nil sink disables metrics.
func New(c Collector, store storage.Store, cfg Config, sink metrics.MetricsSink, log logger.Logger) *Scheduler {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Scheduler{collector: c, store: store, cfg: cfg, sink: sink, log: log}
}

// Run executes one poll and one retention pass immediately, then loops until
// the context is cancelled. It always returns nil once stopped.
func (s *Scheduler) Run(ctx context.Context) error {
	s.PollOnce(ctx)
	s.RetainOnce(ctx)

	pollTick := time.NewTicker(time.Duration(s.cfg.PollIntervalSeconds) * time.Second)
	defer pollTick.Stop()
	retainTick := time.NewTicker(time.Duration(s.cfg.RetentionIntervalSeconds) * time.Second)
	defer retainTick.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Infof("scheduler stopped")
			return nil
		case <-pollTick.C:
			s.PollOnce(ctx)
		case <-retainTick.C:
			s.RetainOnce(ctx)
		}
	}
}

// PollOnce runs a single poll cycle: fetch, then persist if anything came
// back. Failures are logged, never propagated.
func (s *Scheduler) PollOnce(ctx context.Context) {
	start := time.Now()
	ev := metrics.PollEvent{Time: start}

	batch, err := s.collector.Poll(ctx)
	switch {
	case err != nil:
		s.log.Errorf("poll cycle: %v", err)
	case len(batch) == 0:
		s.log.Warnf("poll cycle: empty batch, skip saving")
		ev.Success = true
	default:
		if err := s.store.Append(ctx, batch); err != nil {
			s.log.Errorf("poll cycle: append %d rows: %v", len(batch), err)
			break
		}
		ev.Success = true
		ev.Stations = len(batch)
		ev.Rows = len(batch)
		s.log.Infof("poll cycle: saved %d rows", len(batch))
	}

	ev.Duration = time.Since(start)
	if err := s.sink.RecordPoll(ev); err != nil {
		s.log.Warnf("record poll event: %v", err)
	}
}

// RetainOnce runs a single retention cycle. Failures are logged, never
// propagated.
func (s *Scheduler) RetainOnce(ctx context.Context) {
	start := time.Now()
	removed, err := s.store.Retain(ctx, s.cfg.RetentionMaxAgeDays)
	if err != nil {
		s.log.Errorf("retention cycle: %v", err)
		return
	}
	s.log.Infof("retention cycle: removed %d rows older than %d days", removed, s.cfg.RetentionMaxAgeDays)

	if rec, ok := s.sink.(metrics.RetentionRecorder); ok {
		ev := metrics.RetentionEvent{
			Removed:    removed,
			MaxAgeDays: s.cfg.RetentionMaxAgeDays,
			Duration:   time.Since(start),
			Time:       start,
		}
		if err := rec.RecordRetention(ev); err != nil {
			s.log.Warnf("record retention event: %v", err)
		}
	}
}
