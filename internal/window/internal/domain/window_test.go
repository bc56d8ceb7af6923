package domain

import (
	"math"
	"math/rand"
	"reflect"
	"testing"
)

func seq(from, to int) []float64 {
	out := make([]float64, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, float64(i))
	}
	return out
}

func TestWindow_Merge_Scenarios(t *testing.T) {
	tests := []struct {
		name     string
		initial  []float64
		fetched  []float64
		wantCurr []float64
		wantPrev []float64
		wantAvg  string
	}{
		{
			name:     "empty window receives primes",
			fetched:  []float64{2, 3, 5, 7, 11},
			wantCurr: []float64{2, 3, 5, 7, 11},
			wantPrev: []float64{},
			wantAvg:  "5.60",
		},
		{
			name:     "full window drops oldest",
			initial:  seq(1, 10),
			fetched:  []float64{11, 12},
			wantCurr: seq(3, 12),
			wantPrev: seq(3, 10),
			wantAvg:  "7.50",
		},
		{
			name:     "value already in window is not duplicated",
			initial:  []float64{1, 2, 3},
			fetched:  []float64{3, 4},
			wantCurr: []float64{1, 2, 3, 4},
			wantPrev: []float64{1, 2},
			wantAvg:  "2.50",
		},
		{
			name:     "duplicates inside fetched collapse",
			fetched:  []float64{4, 4, 6, 4},
			wantCurr: []float64{4, 6},
			wantPrev: []float64{},
			wantAvg:  "5.00",
		},
		{
			name:     "empty fetch keeps window",
			initial:  []float64{1, 2},
			fetched:  []float64{},
			wantCurr: []float64{1, 2},
			wantPrev: []float64{},
			wantAvg:  "1.50",
		},
		{
			name:     "empty fetch on empty window",
			fetched:  nil,
			wantCurr: []float64{},
			wantPrev: []float64{},
			wantAvg:  "0.00",
		},
		{
			name:     "fetch larger than capacity keeps newest",
			fetched:  seq(1, 15),
			wantCurr: seq(6, 15),
			wantPrev: []float64{},
			wantAvg:  "10.50",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWindow(10, PrevStateDerived)
			if len(tt.initial) > 0 {
				w.Merge(tt.initial)
			}

			res := w.Merge(tt.fetched)

			if !reflect.DeepEqual(res.Current, tt.wantCurr) {
				t.Errorf("Current = %v, want %v", res.Current, tt.wantCurr)
			}
			if !reflect.DeepEqual(res.Previous, tt.wantPrev) {
				t.Errorf("Previous = %v, want %v", res.Previous, tt.wantPrev)
			}
			if got := res.FormattedAverage(); got != tt.wantAvg {
				t.Errorf("FormattedAverage() = %q, want %q", got, tt.wantAvg)
			}
			if len(res.Fetched) != len(tt.fetched) {
				t.Errorf("Fetched has %d values, want %d", len(res.Fetched), len(tt.fetched))
			}
		})
	}
}

func TestWindow_Merge_SnapshotMode(t *testing.T) {
	w := NewWindow(10, PrevStateSnapshot)
	w.Merge(seq(1, 10))

	res := w.Merge([]float64{10, 11})

	if want := seq(1, 10); !reflect.DeepEqual(res.Previous, want) {
		t.Errorf("Previous = %v, want %v", res.Previous, want)
	}
	if want := seq(2, 11); !reflect.DeepEqual(res.Current, want) {
		t.Errorf("Current = %v, want %v", res.Current, want)
	}
}

func TestWindow_Merge_DerivedModeOverlap(t *testing.T) {
	// The derived previous state is sliced by length, so an overlapping
	// fetch hides part of the real prior content.
	w := NewWindow(10, PrevStateDerived)
	w.Merge([]float64{1, 2, 3})

	res := w.Merge([]float64{3, 4})

	if want := []float64{1, 2}; !reflect.DeepEqual(res.Previous, want) {
		t.Errorf("Previous = %v, want %v", res.Previous, want)
	}
}

func TestWindow_Merge_Bookkeeping(t *testing.T) {
	w := NewWindow(3, PrevStateDerived)
	w.Merge([]float64{1, 2, 3})

	res := w.Merge([]float64{3, 4, 5})

	if res.Added != 2 || res.Duplicates != 1 || res.Evicted != 2 {
		t.Errorf("Added/Duplicates/Evicted = %d/%d/%d, want 2/1/2", res.Added, res.Duplicates, res.Evicted)
	}
	if w.Len() != 3 {
		t.Errorf("Len() = %d, want 3", w.Len())
	}
}

func TestWindow_Merge_EvictedValueCanReturn(t *testing.T) {
	w := NewWindow(2, PrevStateDerived)
	w.Merge([]float64{1, 2, 3})

	res := w.Merge([]float64{1})

	if want := []float64{3, 1}; !reflect.DeepEqual(res.Current, want) {
		t.Errorf("Current = %v, want %v", res.Current, want)
	}
}

func TestWindow_Merge_NegativeZero(t *testing.T) {
	w := NewWindow(10, PrevStateDerived)
	res := w.Merge([]float64{0, math.Copysign(0, -1)})

	if len(res.Current) != 1 {
		t.Fatalf("Current = %v, want a single zero", res.Current)
	}
	if math.Signbit(res.Fetched[1]) {
		t.Error("Fetched kept negative zero")
	}
}

func TestWindow_Merge_Deterministic(t *testing.T) {
	fetches := [][]float64{{5, 1, 9}, {1, 2, 3, 4}, {9, 10, 11, 12, 13, 14, 15}, {2}}

	run := func() []MergeResult {
		w := NewWindow(5, PrevStateDerived)
		out := make([]MergeResult, 0, len(fetches))
		for _, f := range fetches {
			out = append(out, w.Merge(f))
		}
		return out
	}

	if a, b := run(), run(); !reflect.DeepEqual(a, b) {
		t.Errorf("two identical runs diverged:\n%v\n%v", a, b)
	}
}

func TestWindow_Merge_Invariants(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	w := NewWindow(10, PrevStateDerived)

	for i := range 500 {
		fetched := make([]float64, rng.Intn(15))
		for j := range fetched {
			fetched[j] = float64(rng.Intn(30))
		}

		res := w.Merge(fetched)

		if len(res.Current) > 10 {
			t.Fatalf("iteration %d: len(Current) = %d, want <= 10", i, len(res.Current))
		}
		seen := make(map[float64]bool, len(res.Current))
		for _, v := range res.Current {
			if seen[v] {
				t.Fatalf("iteration %d: duplicate %v in %v", i, v, res.Current)
			}
			seen[v] = true
		}
		if want := FormatAverage(Average(res.Current)); res.FormattedAverage() != want {
			t.Fatalf("iteration %d: avg %q, want %q", i, res.FormattedAverage(), want)
		}
	}
}

func TestWindow_Snapshot(t *testing.T) {
	w := NewWindow(10, PrevStateDerived)

	empty := w.Snapshot()
	if len(empty.Current) != 0 || empty.FormattedAverage() != "0.00" {
		t.Errorf("empty Snapshot() = %+v", empty)
	}

	w.Merge([]float64{2, 4})
	snap := w.Snapshot()
	if want := []float64{2, 4}; !reflect.DeepEqual(snap.Current, want) {
		t.Errorf("Current = %v, want %v", snap.Current, want)
	}

	snap.Current[0] = 100
	if w.Values()[0] != 2 {
		t.Error("Snapshot() exposed internal storage")
	}
}

func TestNewWindow_UnknownModeFallsBack(t *testing.T) {
	w := NewWindow(4, PrevStateMode("bogus"))
	if w.mode != PrevStateDerived {
		t.Errorf("mode = %q, want %q", w.mode, PrevStateDerived)
	}
	if w.Capacity() != 4 {
		t.Errorf("Capacity() = %d, want 4", w.Capacity())
	}
}

func TestFormatAverage(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{5.6, "5.60"},
		{7.5, "7.50"},
		{0.125, "0.13"},
		{2.675, "2.67"},
		{1.005, "1.00"},
		{-0.125, "-0.13"},
		{1e6 / 3, "333333.33"},
		{math.Inf(1), "0.00"},
	}

	for _, tt := range tests {
		if got := FormatAverage(tt.in); got != tt.want {
			t.Errorf("FormatAverage(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
