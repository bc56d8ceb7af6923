// Package domain contains the rotating bloom filter pair used to remember
// which numbers were observed recently.
package domain

import (
	"encoding/binary"
	"math"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
)

// SeenSet remembers numbers across a sliding time window using two bloom
// filters. Numbers are added to current; lookups check current and
// previous. Rotate moves current to previous and starts a fresh current,
// so a number stays visible for at least one window when rotated every
// window/2.
type SeenSet struct {
	current  *bloom.BloomFilter
	previous *bloom.BloomFilter
	mu       sync.Mutex
	window   time.Duration
	capacity uint
	fpRate   float64
}

// NewSeenSet creates a SeenSet sized for capacity numbers per window at the
// given false positive rate.
func NewSeenSet(window time.Duration, capacity uint, fpRate float64) *SeenSet {
	return &SeenSet{
		current:  bloom.NewWithEstimates(capacity, fpRate),
		previous: bloom.NewWithEstimates(capacity, fpRate),
		window:   window,
		capacity: capacity,
		fpRate:   fpRate,
	}
}

// Observe records n and reports whether it was absent from both filters,
// i.e. whether this is the first sighting inside the window. A bloom false
// positive makes a genuinely new number look already seen, never the
// reverse.
func (s *SeenSet) Observe(n float64) bool {
	key := numberKey(n)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current.Test(key) || s.previous.Test(key) {
		return false
	}
	s.current.Add(key)
	return true
}

// Rotate swaps current into previous and allocates a fresh current filter.
func (s *SeenSet) Rotate() {
	s.mu.Lock()
	s.previous = s.current
	s.current = bloom.NewWithEstimates(s.capacity, s.fpRate)
	s.mu.Unlock()
}

// Window returns the configured tracking window.
func (s *SeenSet) Window() time.Duration {
	return s.window
}

// numberKey encodes n as its IEEE-754 bits. Negative zero is folded into
// zero so the encoding agrees with numeric equality.
func numberKey(n float64) []byte {
	if n == 0 {
		n = 0
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], math.Float64bits(n))
	return buf[:]
}
