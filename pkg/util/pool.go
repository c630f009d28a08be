package util

import "runtime"

// GetOptimalPoolSize returns the worker count used for stylesheet passes.
//
// Formula: min(max(runtime.NumCPU() * 2, 4), 32)
//
// Workers alternate between reading a file and scanning it, so running
// twice the core count keeps the CPU busy while reads are in flight.
// The cap keeps per-pass memory bounded on large machines.
func GetOptimalPoolSize() int {
	poolSize := runtime.NumCPU() * 2

	if poolSize < 4 {
		poolSize = 4
	}
	if poolSize > 32 {
		poolSize = 32
	}

	return poolSize
}

// GetOptimalPoolSizeWithOverride returns override when it is positive and
// GetOptimalPoolSize otherwise.
func GetOptimalPoolSizeWithOverride(override int) int {
	if override > 0 {
		return override
	}
	return GetOptimalPoolSize()
}
