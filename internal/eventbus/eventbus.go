// Package eventbus distributes advisory reports to in-process consumers
// (status loggers, exporters) without coupling them to the advisor.
package eventbus

import (
	"sync"

	"github.com/veloops/stationd/core/rebalance"
)

// Bus is a fan-out channel bus for advisory reports. Delivery is
// non-blocking: a slow subscriber loses reports rather than stalling the
// publisher.
type Bus struct {
	mu     sync.RWMutex
	subs   []chan rebalance.Report
	closed bool
}

// New creates a new Bus.
func New() *Bus { return &Bus{} }

// Publish sends the report to all subscribers.
func (b *Bus) Publish(report rebalance.Report) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- report:
		default:
		}
	}
}

// Subscribe registers a new subscriber and returns its channel.
func (b *Bus) Subscribe() <-chan rebalance.Report {
	ch := make(chan rebalance.Report, 8)
	b.mu.Lock()
	if b.closed {
		close(ch)
	} else {
		b.subs = append(b.subs, ch)
	}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the subscriber and closes its channel.
func (b *Bus) Unsubscribe(sub <-chan rebalance.Report) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, ch := range b.subs {
		if ch == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			if !b.closed {
				close(ch)
			}
			return
		}
	}
}

// Close closes all subscriber channels and clears the list.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
	b.mu.Unlock()
}
