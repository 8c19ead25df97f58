package effects

// RoomConfig describes the room the piano is placed in.
type RoomConfig struct {
	Size     float32 // 0..1, scales the comb delay lengths
	Feedback float32 // 0..0.95, decay of the tail
	Wet      float32 // 0..1, wet/dry mix
}

// DefaultRoom is a small hall with a short tail that keeps fast passages
// clear.
var DefaultRoom = RoomConfig{Size: 0.6, Feedback: 0.72, Wet: 0.18}

// Reverb is a Schroeder reverb: four parallel combs into two allpasses.
// The left and right combs are detuned against each other for width.
type Reverb struct {
	left, right [4]comb
	diffuse     [2][2]allpass
	wet         float32
}

type comb struct {
	buf  []float32
	pos  int
	fb   float32
	damp float32
	last float32
}

type allpass struct {
	buf []float32
	pos int
}

// comb delay ratios, relative to the room's base length
var combRatios = [4]int{1000, 1117, 1271, 1437}

const stereoSpread = 23

func NewReverb(sampleRate int, room RoomConfig) *Reverb {
	base := int(float32(sampleRate) * clamp(room.Size, 0, 1) * 0.05)
	if base < 10 {
		base = 10
	}
	fb := clamp(room.Feedback, 0, 0.95)
	r := &Reverb{wet: clamp(room.Wet, 0, 1)}
	for i, ratio := range combRatios {
		n := base * ratio / 1000
		r.left[i] = comb{buf: make([]float32, n), fb: fb, damp: 0.2}
		r.right[i] = comb{buf: make([]float32, n+stereoSpread), fb: fb, damp: 0.2}
	}
	for ch := range r.diffuse {
		for i, ratio := range [2]int{347, 213} {
			n := max(base*ratio/1000+ch*stereoSpread/2, 1)
			r.diffuse[ch][i] = allpass{buf: make([]float32, n)}
		}
	}
	return r
}

func (r *Reverb) Process(l, rt float32) (float32, float32) {
	in := (l + rt) * 0.5
	var outL, outR float32
	for i := range r.left {
		outL += r.left[i].process(in)
		outR += r.right[i].process(in)
	}
	outL *= 0.25
	outR *= 0.25
	for i := range r.diffuse[0] {
		outL = r.diffuse[0][i].process(outL)
		outR = r.diffuse[1][i].process(outR)
	}
	dry := 1 - r.wet
	return l*dry + outL*r.wet, rt*dry + outR*r.wet
}

func (r *Reverb) Reset() {
	for i := range r.left {
		r.left[i].reset()
		r.right[i].reset()
	}
	for ch := range r.diffuse {
		for i := range r.diffuse[ch] {
			clear(r.diffuse[ch][i].buf)
			r.diffuse[ch][i].pos = 0
		}
	}
}

// process feeds a one-pole lowpass of the output back in, so high
// frequencies die out faster than lows as in a real room.
func (c *comb) process(in float32) float32 {
	out := c.buf[c.pos]
	c.last = out*(1-c.damp) + c.last*c.damp
	c.buf[c.pos] = in + c.last*c.fb
	c.pos++
	if c.pos == len(c.buf) {
		c.pos = 0
	}
	return out
}

func (c *comb) reset() {
	clear(c.buf)
	c.pos = 0
	c.last = 0
}

func (a *allpass) process(in float32) float32 {
	delayed := a.buf[a.pos]
	a.buf[a.pos] = in + delayed*0.5
	a.pos++
	if a.pos == len(a.buf) {
		a.pos = 0
	}
	return delayed - in
}
