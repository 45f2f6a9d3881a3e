package domain

import (
	"testing"
	"time"
)

func at(hour int) time.Time {
	return time.Date(2024, 5, 20, hour, 0, 0, 0, time.UTC)
}

func TestIntervalOverlaps(t *testing.T) {
	existing := Interval{Start: at(10), End: at(12)}

	cases := []struct {
		name string
		req  Interval
		want bool
	}{
		{"inside", Interval{at(10), at(11)}, true},
		{"straddles end", Interval{at(11), at(13)}, true},
		{"straddles start", Interval{at(9), at(11)}, true},
		{"covers", Interval{at(8), at(14)}, true},
		{"same", Interval{at(10), at(12)}, true},
		{"touches end", Interval{at(12), at(14)}, false},
		{"touches start", Interval{at(8), at(10)}, false},
		{"disjoint", Interval{at(14), at(15)}, false},
	}
	for _, tc := range cases {
		if got := existing.Overlaps(tc.req); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
		if got := tc.req.Overlaps(existing); got != tc.want {
			t.Fatalf("%s: overlap must be symmetric", tc.name)
		}
	}
}

func TestIntervalValid(t *testing.T) {
	if (Interval{at(12), at(12)}).Valid() {
		t.Fatalf("empty interval must be invalid")
	}
	if !(Interval{at(10), at(12)}).Valid() {
		t.Fatalf("expected valid interval")
	}
}
