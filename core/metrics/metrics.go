// Package metrics defines the cycle-event types and sink interfaces used for
// observability. Sinks are optional: every cycle runs the same with a NopSink.
package metrics

import "time"

// PollEvent captures the outcome of one collector cycle.
type PollEvent struct {
	Stations int
	Rows     int
	Success  bool
	Duration time.Duration
	Time     time.Time
}

// RetentionEvent captures the outcome of one retention cycle.
type RetentionEvent struct {
	Removed    int64
	MaxAgeDays int
	Duration   time.Duration
	Time       time.Time
}

// AdvisoryEvent summarizes one advisory run.
type AdvisoryEvent struct {
	RunID          string
	Scanned        int
	Skipped        int
	SupplyCount    int
	RemovalCount   int
	HorizonMinutes int
	Duration       time.Duration
	Time           time.Time
}

// MetricsSink records poll cycles for observability purposes.
type MetricsSink interface {
	RecordPoll(ev PollEvent) error
}

// RetentionRecorder is implemented by sinks able to record retention cycles.
type RetentionRecorder interface {
	RecordRetention(ev RetentionEvent) error
}

// AdvisoryRecorder is implemented by sinks able to record advisory runs.
type AdvisoryRecorder interface {
	RecordAdvisory(ev AdvisoryEvent) error
}

// NopSink implements all recorder interfaces with no-op methods.
type NopSink struct{}

func (NopSink) RecordPoll(PollEvent) error           { return nil }
func (NopSink) RecordRetention(RetentionEvent) error { return nil }
func (NopSink) RecordAdvisory(AdvisoryEvent) error   { return nil }
