package common

import "math"

// Epsilon is the tolerance used for float comparisons on positions and angles.
const Epsilon = 1e-6

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 limits v to [0, 1].
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// Sign returns -1 for negative values and 1 otherwise, matching the
// convention that a zero angle still picks a turn direction.
func Sign(v float64) int {
	if v < 0 {
		return -1
	}
	return 1
}

func Deg2Rad(deg float64) float64 {
	return deg * math.Pi / 180
}

func Rad2Deg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// NormalizeAngle wraps an angle in radians to [-pi, pi].
func NormalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
