package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/veloops/stationd/core/metrics"
)

type pollOnlySink struct {
	polls int
}

func (s *pollOnlySink) RecordPoll(coremetrics.PollEvent) error { s.polls++; return nil }

type fullSink struct {
	polls      int
	retentions int
	advisories int
}

func (s *fullSink) RecordPoll(coremetrics.PollEvent) error           { s.polls++; return nil }
func (s *fullSink) RecordRetention(coremetrics.RetentionEvent) error { s.retentions++; return nil }
func (s *fullSink) RecordAdvisory(coremetrics.AdvisoryEvent) error   { s.advisories++; return nil }

func TestMultiSinkFanOut(t *testing.T) {
	partial := &pollOnlySink{}
	full := &fullSink{}
	m := NewMultiSink(partial, full)

	require.NoError(t, m.RecordPoll(coremetrics.PollEvent{Success: true}))
	require.NoError(t, m.RecordRetention(coremetrics.RetentionEvent{Removed: 2}))
	require.NoError(t, m.RecordAdvisory(coremetrics.AdvisoryEvent{RunID: "r1"}))

	assert.Equal(t, 1, partial.polls)
	assert.Equal(t, 1, full.polls)
	// The partial sink silently skips events it cannot record.
	assert.Equal(t, 1, full.retentions)
	assert.Equal(t, 1, full.advisories)
}

func TestPromSinkRecordsEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordPoll(coremetrics.PollEvent{
		Success: true, Stations: 5, Rows: 5, Duration: 200 * time.Millisecond,
	}))
	require.NoError(t, sink.RecordPoll(coremetrics.PollEvent{Success: false}))
	require.NoError(t, sink.RecordRetention(coremetrics.RetentionEvent{Removed: 7}))
	require.NoError(t, sink.RecordAdvisory(coremetrics.AdvisoryEvent{SupplyCount: 3, RemovalCount: 1}))

	families, err := reg.Gather()
	require.NoError(t, err)
	byName := map[string]bool{}
	for _, f := range families {
		byName[f.GetName()] = true
	}
	assert.True(t, byName["feed_poll_cycles_total"])
	assert.True(t, byName["snapshot_rows_inserted_total"])
	assert.True(t, byName["retention_rows_deleted_total"])
	assert.True(t, byName["advisory_recommendations"])
}

func TestPromSinkDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	_, err = NewPromSinkWithRegistry(reg)
	assert.NoError(t, err)
}
