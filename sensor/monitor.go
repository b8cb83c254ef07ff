// Package sensor turns the raw PIR input into the debounced motion signal
// the animation reacts to.
package sensor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	u "lautenbacher.net/ledtree/util"
)

// Input is a raw digital motion reading. A disconnected sensor reads as
// inactive.
type Input interface {
	Active() bool
}

// Stats counts what the monitor has seen since it was created.
type Stats struct {
	Polls       int // reads that passed the interval gate
	Activations int // first reads that were active
	Confirmed   int // activations still active after the debounce time
	Rejected    int // activations dropped as noise
}

// Monitor polls an Input at most once per interval and confirms every
// active reading with a second read after the debounce time.
type Monitor struct {
	input    Input
	clock    u.Clock
	debounce time.Duration
	interval time.Duration

	lastPoll time.Time
	polled   bool

	statsMutex sync.Mutex
	stats      Stats
}

func NewMonitor(input Input, clock u.Clock, debounce, interval time.Duration) *Monitor {
	return &Monitor{
		input:    input,
		clock:    clock,
		debounce: debounce,
		interval: interval,
	}
}

// Poll returns true only if two reads separated by the debounce time
// were both active. Within interval of the previous accepted poll it
// returns false without reading the sensor. A cancelled ctx abandons the
// debounce wait and reports no motion.
func (m *Monitor) Poll(ctx context.Context) bool {
	now := m.clock.Now()
	if m.polled && now.Sub(m.lastPoll) < m.interval {
		return false
	}
	m.polled = true
	m.lastPoll = now
	m.count(func(s *Stats) { s.Polls++ })

	if !m.input.Active() {
		return false
	}
	m.count(func(s *Stats) { s.Activations++ })

	select {
	case <-ctx.Done():
		return false
	case <-m.clock.After(m.debounce):
	}

	if m.input.Active() {
		m.count(func(s *Stats) { s.Confirmed++ })
		return true
	}
	m.count(func(s *Stats) { s.Rejected++ })
	slog.Debug("Ignoring transient PIR reading", "debounce", m.debounce)
	return false
}

// Stats returns a snapshot of the counters. It may be called from any
// goroutine.
func (m *Monitor) Stats() Stats {
	m.statsMutex.Lock()
	defer m.statsMutex.Unlock()
	return m.stats
}

func (m *Monitor) count(f func(*Stats)) {
	m.statsMutex.Lock()
	f(&m.stats)
	m.statsMutex.Unlock()
}
