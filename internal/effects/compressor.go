package effects

import "math"

// Limiter keeps the summed voices under a ceiling. Several pooled voices
// of neighbouring pitches can stack well above full scale; the limiter
// follows the louder channel so the stereo image does not shift.
type Limiter struct {
	threshold float32
	ratio     float32
	attack    float32
	release   float32
	env       float32
}

// NewLimiter builds a limiter with the threshold in dBFS, the ratio above
// it and attack/release times in milliseconds.
func NewLimiter(sampleRate int, thresholdDB, ratio, attackMs, releaseMs float32) *Limiter {
	if ratio < 1 {
		ratio = 1
	}
	return &Limiter{
		threshold: dbToLinear(thresholdDB),
		ratio:     ratio,
		attack:    coefficient(sampleRate, attackMs),
		release:   coefficient(sampleRate, releaseMs),
	}
}

// NewMasterLimiter is the limiter used on the piano's output.
func NewMasterLimiter(sampleRate int) *Limiter {
	return NewLimiter(sampleRate, -3, 8, 1, 120)
}

func (c *Limiter) Process(l, r float32) (float32, float32) {
	peak := float32(math.Max(math.Abs(float64(l)), math.Abs(float64(r))))
	if peak > c.env {
		c.env += c.attack * (peak - c.env)
	} else {
		c.env += c.release * (peak - c.env)
	}
	g := c.gain()
	return l * g, r * g
}

func (c *Limiter) gain() float32 {
	if c.env <= c.threshold {
		return 1
	}
	over := float64(c.env / c.threshold)
	return float32(math.Pow(over, 1/float64(c.ratio)-1))
}

func (c *Limiter) Reset() { c.env = 0 }

func dbToLinear(db float32) float32 {
	return float32(math.Pow(10, float64(db)/20))
}

func coefficient(sampleRate int, ms float32) float32 {
	if ms <= 0 || sampleRate <= 0 {
		return 1
	}
	return float32(1 - math.Exp(-1/(float64(ms)*float64(sampleRate)/1000)))
}
