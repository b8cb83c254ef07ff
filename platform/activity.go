package platform

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/gammazero/deque"
)

const maxActivityHistory = 500

// activityHistory keeps the latest PIR readings for the simulation's
// activity pane.
type activityHistory struct {
	mu      sync.Mutex
	samples *deque.Deque[bool]
}

type activityStats struct {
	min    int
	max    int
	mean   float64
	median float64
	stdDev float64
}

func newActivityHistory() *activityHistory {
	h := &activityHistory{samples: new(deque.Deque[bool])}
	h.samples.Grow(maxActivityHistory)
	return h
}

func (h *activityHistory) record(active bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.samples.Len() == maxActivityHistory {
		h.samples.PopFront()
	}
	h.samples.PushBack(active)
}

// summary renders the history as one line for the activity pane.
func (h *activityHistory) summary() string {
	h.mu.Lock()
	data := make([]bool, h.samples.Len())
	for i := range h.samples.Len() {
		data[i] = h.samples.At(i)
	}
	h.mu.Unlock()

	active := 0
	for _, v := range data {
		if v {
			active++
		}
	}
	ratio := 0.0
	if len(data) > 0 {
		ratio = 100 * float64(active) / float64(len(data))
	}
	pulses := pulseLengths(data)
	stats := calculateStats(pulses)
	return fmt.Sprintf(" Reads: %-4d Active: %5.1f%%  Pulses: %-3d [min|mean|max] [%d|%.1f|%d] reads, stddev %.1f",
		len(data), ratio, len(pulses), stats.min, stats.mean, stats.max, stats.stdDev)
}

// pulseLengths returns the lengths of all runs of active readings.
func pulseLengths(samples []bool) []int {
	var pulses []int
	run := 0
	for _, v := range samples {
		if v {
			run++
			continue
		}
		if run > 0 {
			pulses = append(pulses, run)
			run = 0
		}
	}
	if run > 0 {
		pulses = append(pulses, run)
	}
	return pulses
}

func calculateStats(data []int) activityStats {
	if len(data) == 0 {
		return activityStats{}
	}

	var sum int
	min, max := data[0], data[0]
	for _, v := range data {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}

	mean := float64(sum) / float64(len(data))

	sorted := append([]int(nil), data...)
	sort.Ints(sorted)
	var median float64
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		median = float64(sorted[mid-1]+sorted[mid]) / 2.0
	} else {
		median = float64(sorted[mid])
	}

	var sumOfSquares float64
	for _, v := range data {
		sumOfSquares += (float64(v) - mean) * (float64(v) - mean)
	}
	stdDev := math.Sqrt(sumOfSquares / float64(len(data)))

	return activityStats{
		min:    min,
		max:    max,
		mean:   mean,
		median: median,
		stdDev: stdDev,
	}
}
