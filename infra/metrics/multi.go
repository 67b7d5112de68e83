package metrics

import coremetrics "github.com/veloops/stationd/core/metrics"

// MultiSink fans cycle events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordPoll forwards the event to all sinks, returning the first error.
func (m *MultiSink) RecordPoll(ev coremetrics.PollEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordPoll(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordRetention forwards retention events to sinks that record them.
func (m *MultiSink) RecordRetention(ev coremetrics.RetentionEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.RetentionRecorder); ok {
			if err := rec.RecordRetention(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordAdvisory forwards advisory events to sinks that record them.
func (m *MultiSink) RecordAdvisory(ev coremetrics.AdvisoryEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.AdvisoryRecorder); ok {
			if err := rec.RecordAdvisory(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
