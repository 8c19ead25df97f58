package sample

import (
	"math"
	"time"

	"github.com/cbegin/vpiano-go/internal/pitch"
)

// partials of the built-in tone: relative amplitude per harmonic
var partials = []float64{1, 0.45, 0.22, 0.12, 0.06}

// Synthesize builds a plain struck-string tone for every pitch. It lets the
// piano make sound when no recordings or SoundFont are configured.
func Synthesize(rate int, length time.Duration) Set {
	set := make(Set, pitch.Len())
	n := int(length.Seconds() * float64(rate))
	for _, p := range pitch.All() {
		freq := 440 * math.Pow(2, float64(p.MIDI-69)/12)
		frames := make([][2]float32, n)
		for i := range frames {
			t := float64(i) / float64(rate)
			var v float64
			for h, amp := range partials {
				// higher harmonics decay faster
				v += amp * math.Exp(-t*float64(h+1)*1.2) * math.Sin(2*math.Pi*freq*float64(h+1)*t)
			}
			attack := math.Min(1, t*200)
			v *= 0.25 * attack
			frames[i] = [2]float32{float32(v), float32(v)}
		}
		set[p.Name] = &Sample{Name: p.Name, Rate: rate, Frames: frames}
	}
	return set
}
