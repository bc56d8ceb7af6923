// Package domain tests the rotating seen-number filter pair.
package domain

import (
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSeenSet_FirstSighting(t *testing.T) {
	s := NewSeenSet(10*time.Minute, 10000, 0.0001)

	if !s.Observe(7) {
		t.Error("Observe(7) = false for first sighting, want true")
	}
}

func TestSeenSet_SecondSighting(t *testing.T) {
	s := NewSeenSet(10*time.Minute, 10000, 0.0001)

	s.Observe(42)
	if s.Observe(42) {
		t.Error("Observe(42) second call = true, want false")
	}
}

func TestSeenSet_DistinctNumbers(t *testing.T) {
	s := NewSeenSet(10*time.Minute, 10000, 0.0001)

	for _, n := range []float64{1, 2, 3.5, -4} {
		if !s.Observe(n) {
			t.Errorf("Observe(%v) = false for first sighting, want true", n)
		}
	}
}

func TestSeenSet_NegativeZeroEqualsZero(t *testing.T) {
	s := NewSeenSet(10*time.Minute, 10000, 0.0001)

	s.Observe(0)
	if s.Observe(math.Copysign(0, -1)) {
		t.Error("Observe(-0) after Observe(0) = true, want false")
	}
}

func TestSeenSet_Rotate_KeepsPrevious(t *testing.T) {
	s := NewSeenSet(10*time.Minute, 10000, 0.0001)

	s.Observe(11)
	s.Rotate()

	if s.Observe(11) {
		t.Error("after one rotation 11 should still be seen")
	}
}

func TestSeenSet_DoubleRotate_Expires(t *testing.T) {
	s := NewSeenSet(10*time.Minute, 10000, 0.0001)

	s.Observe(13)
	s.Rotate()
	s.Rotate()

	if !s.Observe(13) {
		t.Error("after two rotations 13 should be forgotten")
	}
}

func TestSeenSet_ConcurrentObserve(t *testing.T) {
	s := NewSeenSet(10*time.Minute, 10000, 0.0001)

	var firsts atomic.Int32
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Observe(99) {
				firsts.Add(1)
			}
		}()
	}
	wg.Wait()

	if firsts.Load() != 1 {
		t.Errorf("first sightings = %d, want exactly 1", firsts.Load())
	}
}
