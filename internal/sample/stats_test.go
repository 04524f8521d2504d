package sample

import (
	"math"
	"testing"
)

func TestMovingStats_Empty(t *testing.T) {
	var s MovingStats
	st := s.Snapshot()
	if st.Count != 0 {
		t.Errorf("Count = %d, want 0", st.Count)
	}
	if !math.IsNaN(st.Average) {
		t.Errorf("Average = %v, want NaN before first measurement", st.Average)
	}
}

func TestMovingStats_KnownSeries(t *testing.T) {
	var s MovingStats
	for _, v := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		s.Add(v)
	}
	st := s.Snapshot()
	if st.Count != 8 {
		t.Errorf("Count = %d, want 8", st.Count)
	}
	if st.Average != 5 {
		t.Errorf("Average = %v, want 5", st.Average)
	}
	// Population standard deviation of this classic series is exactly 2.
	if math.Abs(st.StdDev-2) > 1e-12 {
		t.Errorf("StdDev = %v, want 2", st.StdDev)
	}
	if st.Min != 2 || st.Max != 9 {
		t.Errorf("Min/Max = %v/%v, want 2/9", st.Min, st.Max)
	}
}

func TestMovingStats_SingleMeasurement(t *testing.T) {
	var s MovingStats
	s.Add(0.1)
	st := s.Snapshot()
	if st.Average != 0.1 || st.Min != 0.1 || st.Max != 0.1 {
		t.Errorf("snapshot = %+v, want all fields 0.1", st)
	}
	if st.StdDev != 0 {
		t.Errorf("StdDev = %v, want 0", st.StdDev)
	}
}

func TestMovingStats_Reset(t *testing.T) {
	var s MovingStats
	s.Add(1)
	s.Add(2)
	s.Reset()
	if st := s.Snapshot(); st.Count != 0 {
		t.Errorf("Count after reset = %d, want 0", st.Count)
	}
	s.Add(10)
	if st := s.Snapshot(); st.Average != 10 {
		t.Errorf("Average after reset+add = %v, want 10", st.Average)
	}
}
