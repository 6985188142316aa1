package config

import (
	"runtime"
	"testing"
)

func TestWalkWorkers_Auto(t *testing.T) {
	got := WalkWorkers(0)

	if got < MinWalkWorkers {
		t.Errorf("WalkWorkers(0) = %d, want >= %d", got, MinWalkWorkers)
	}
	if got > MaxWalkWorkers {
		t.Errorf("WalkWorkers(0) = %d, want <= %d", got, MaxWalkWorkers)
	}

	// Should track the host CPU count inside the clamp.
	want := min(max(runtime.NumCPU(), MinWalkWorkers), MaxWalkWorkers)
	if got != want {
		t.Errorf("WalkWorkers(0) = %d, want %d", got, want)
	}
}

func TestWalkWorkers_Requests(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		want      int
	}{
		{"explicit request honored", 8, 8},
		{"request of one honored", 1, 1},
		{"request at cap", MaxWalkWorkers, MaxWalkWorkers},
		{"request above cap clamped", 100, MaxWalkWorkers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WalkWorkers(tt.requested); got != tt.want {
				t.Errorf("WalkWorkers(%d) = %d, want %d", tt.requested, got, tt.want)
			}
		})
	}
}

func TestWalkWorkers_NegativeMatchesAuto(t *testing.T) {
	if got, want := WalkWorkers(-3), WalkWorkers(0); got != want {
		t.Errorf("WalkWorkers(-3) = %d, want %d (auto)", got, want)
	}
}
