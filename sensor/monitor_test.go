package sensor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	u "lautenbacher.net/ledtree/util"
)

// scriptedInput returns the scripted readings in order, then false.
type scriptedInput struct {
	readings []bool
	reads    int
}

func (s *scriptedInput) Active() bool {
	s.reads++
	if len(s.readings) == 0 {
		return false
	}
	v := s.readings[0]
	s.readings = s.readings[1:]
	return v
}

type constInput bool

func (c constInput) Active() bool { return bool(c) }

var testStart = time.Date(2024, 12, 24, 18, 0, 0, 0, time.UTC)

func TestMonitor_Debounce(t *testing.T) {
	tests := []struct {
		name      string
		readings  []bool
		want      bool
		wantReads int
		stats     Stats
	}{
		{"no motion", []bool{false}, false, 1, Stats{Polls: 1}},
		{"confirmed", []bool{true, true}, true, 2, Stats{Polls: 1, Activations: 1, Confirmed: 1}},
		{"transient", []bool{true, false}, false, 2, Stats{Polls: 1, Activations: 1, Rejected: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := u.NewManualClock(testStart)
			input := &scriptedInput{readings: tt.readings}
			m := NewMonitor(input, clock, 50*time.Millisecond, 100*time.Millisecond)

			assert.Equal(t, tt.want, m.Poll(context.Background()))
			assert.Equal(t, tt.wantReads, input.reads)
			assert.Equal(t, tt.stats, m.Stats())
		})
	}
}

func TestMonitor_DebounceWaitsOnClock(t *testing.T) {
	clock := u.NewManualClock(testStart)
	m := NewMonitor(constInput(true), clock, 50*time.Millisecond, 100*time.Millisecond)

	assert.True(t, m.Poll(context.Background()))
	assert.Equal(t, testStart.Add(50*time.Millisecond), clock.Now(), "the second read happens after the debounce time")
}

func TestMonitor_IntervalGate(t *testing.T) {
	clock := u.NewManualClock(testStart)
	input := &scriptedInput{readings: []bool{false, false, false}}
	m := NewMonitor(input, clock, 0, 100*time.Millisecond)
	ctx := context.Background()

	m.Poll(ctx)
	assert.Equal(t, 1, input.reads)

	clock.Advance(60 * time.Millisecond)
	assert.False(t, m.Poll(ctx))
	assert.Equal(t, 1, input.reads, "a poll within the interval must not read the sensor")

	clock.Advance(40 * time.Millisecond)
	m.Poll(ctx)
	assert.Equal(t, 2, input.reads)
	assert.Equal(t, 2, m.Stats().Polls)
}

func TestMonitor_CancelledDuringDebounce(t *testing.T) {
	clock := u.NewManualClock(testStart)
	m := NewMonitor(constInput(true), clock, 0, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Both channels may be ready; whichever wins, a cancelled poll never
	// reports more than a confirmed reading.
	for i := 0; i < 20; i++ {
		m.Poll(ctx)
	}
	stats := m.Stats()
	assert.Equal(t, 20, stats.Activations)
	assert.Equal(t, 0, stats.Rejected)
}

func TestMonitor_DisconnectedSensor(t *testing.T) {
	clock := u.NewManualClock(testStart)
	m := NewMonitor(constInput(false), clock, 50*time.Millisecond, 100*time.Millisecond)
	for i := 0; i < 10; i++ {
		assert.False(t, m.Poll(context.Background()))
		clock.Advance(100 * time.Millisecond)
	}
	assert.Equal(t, Stats{Polls: 10}, m.Stats())
}
