package sample

import (
	"math"
	"sync"
)

// Stats is a read-only snapshot of a moving statistics accumulator.
type Stats struct {
	Average float64
	Min     float64
	Max     float64
	StdDev  float64
	Count   uint64
}

// MovingStats accumulates streaming mean and variance over a series of
// measurements without retaining them, Welford's method. The tracker feeds
// it consecutive inter-arrival intervals; diagnostics read snapshots.
type MovingStats struct {
	mu    sync.Mutex
	count uint64
	mean  float64
	m2    float64
	min   float64
	max   float64
}

// Add folds one measurement into the accumulator.
func (s *MovingStats) Add(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
	if s.count == 1 {
		s.min, s.max = v, v
	} else {
		if v < s.min {
			s.min = v
		}
		if v > s.max {
			s.max = v
		}
	}
	delta := v - s.mean
	s.mean += delta / float64(s.count)
	s.m2 += delta * (v - s.mean)
}

// Snapshot returns the current statistics. NaN average/min/max and zero
// deviation before the first measurement.
func (s *MovingStats) Snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.count == 0 {
		nan := math.NaN()
		return Stats{Average: nan, Min: nan, Max: nan}
	}
	return Stats{
		Average: s.mean,
		Min:     s.min,
		Max:     s.max,
		StdDev:  math.Sqrt(s.m2 / float64(s.count)),
		Count:   s.count,
	}
}

// Reset discards all accumulated measurements.
func (s *MovingStats) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count = 0
	s.mean = 0
	s.m2 = 0
	s.min = 0
	s.max = 0
}
