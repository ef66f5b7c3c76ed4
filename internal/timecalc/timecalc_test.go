package timecalc_test

import (
	"testing"
	"time"

	"github.com/Tiliavir/trivial-break-reminder/internal/timecalc"
)

func TestUntilNext(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		d    time.Duration
		want time.Duration
	}{
		{
			name: "exactly on boundary",
			at:   time.Unix(900, 0),
			d:    900 * time.Second,
			want: 900 * time.Second,
		},
		{
			name: "mid interval",
			at:   time.Unix(930, 0),
			d:    900 * time.Second,
			want: 870 * time.Second,
		},
		{
			name: "just before boundary",
			at:   time.Unix(1799, 0),
			d:    900 * time.Second,
			want: time.Second,
		},
		{
			name: "sub-second remainder",
			at:   time.Unix(10, 500_000_000),
			d:    30 * time.Second,
			want: 19*time.Second + 500*time.Millisecond,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := timecalc.UntilNext(tc.at, tc.d); got != tc.want {
				t.Errorf("UntilNext(%v, %v) = %v, want %v", tc.at.Unix(), tc.d, got, tc.want)
			}
		})
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2026, 2, 27, 23, 59, 0, 0, time.UTC)
	b := time.Date(2026, 2, 27, 0, 1, 0, 0, time.UTC)
	c := time.Date(2026, 2, 28, 0, 1, 0, 0, time.UTC)
	if !timecalc.SameDay(a, b) {
		t.Error("SameDay(a, b) = false, want true")
	}
	if timecalc.SameDay(a, c) {
		t.Error("SameDay(a, c) = true, want false")
	}
}
