package envelope

import "time"

// Hand-tuned for a pleasant release: quick multiplicative decay while loud,
// a slow linear tail once quiet.
const (
	FadeInterval = 5 * time.Millisecond
	FadeFloor    = 0.03
	fadeKnee     = 0.2
	fadeFactor   = 0.95
	fadeStep     = 0.01
)

// NextVolume computes one fade step. done is true once v is below the
// floor and the voice should be stopped instead.
func NextVolume(v float64) (next float64, done bool) {
	if v < FadeFloor {
		return v, true
	}
	if v > fadeKnee {
		return v * fadeFactor, false
	}
	next = v - fadeStep
	if next < 0 {
		next = 0
	}
	return next, false
}

// FadeSteps returns how many steps a fade starting at v takes to finish,
// counting the final stopping step.
func FadeSteps(v float64) int {
	n := 1
	for {
		next, done := NextVolume(v)
		if done {
			return n
		}
		v = next
		n++
	}
}
