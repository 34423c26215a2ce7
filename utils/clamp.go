package utils

import "math"

// clamp bounds v into [lo, hi]. NaN maps to lo.
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampByte bounds v into the wire range and narrows it to a single octet.
func clampByte(v int) byte {
	return byte(clampInt(v, MinPPM, MaxPPM))
}
