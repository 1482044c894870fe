package animator

import "math"

// AccelerateDecelerate starts and ends slowly, fastest in the middle
func AccelerateDecelerate(t float64) float64 {
	return math.Cos((t+1)*math.Pi)/2 + 0.5
}

// Overshoot runs past 1 and settles back; tension 0 degrades to ease-out
func Overshoot(tension float64) func(float64) float64 {
	return func(t float64) float64 {
		t--
		return t*t*((tension+1)*t+tension) + 1
	}
}
