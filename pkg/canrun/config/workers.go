package config

import "runtime"

// WalkWorkers resolves the size of the tree walk worker pool. Values
// above zero are honored up to MaxWalkWorkers. Zero or negative values
// size the pool from the host CPU count, clamped to
// [MinWalkWorkers, MaxWalkWorkers].
func WalkWorkers(requested int) int {
	if requested > 0 {
		return min(requested, MaxWalkWorkers)
	}
	return min(max(runtime.NumCPU(), MinWalkWorkers), MaxWalkWorkers)
}
