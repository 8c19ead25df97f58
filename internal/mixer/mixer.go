// Package mixer sums the piano's sample voices into one stereo stream.
// Voices are driven from the piano's scheduler while Process runs on the
// audio thread; both sides share the mixer lock.
package mixer

import (
	"errors"
	"sync"
	"time"

	"github.com/cbegin/vpiano-go/internal/debug"
	"github.com/cbegin/vpiano-go/internal/effects"
	"github.com/cbegin/vpiano-go/internal/sample"
	"github.com/cbegin/vpiano-go/internal/voice"
)

var ErrEmptySample = errors.New("mixer: sample has no frames")

// volumeRamp is how many frames a voice takes to reach a new volume, which
// keeps the 5ms fade steps from clicking.
const volumeRamp = 64

type Mixer struct {
	mu      sync.Mutex
	rate    int
	samples sample.Set
	voices  []*Voice
	banked  map[string]*Voice
	master  *effects.Chain
	gain    float32
}

type Option func(*Mixer)

// WithMaster runs the summed output through chain.
func WithMaster(chain *effects.Chain) Option {
	return func(m *Mixer) { m.master = chain }
}

// WithGain scales the output before the master chain.
func WithGain(g float32) Option {
	return func(m *Mixer) { m.gain = g }
}

func New(rate int, samples sample.Set, opts ...Option) *Mixer {
	m := &Mixer{
		rate:    rate,
		samples: samples,
		banked:  make(map[string]*Voice),
		gain:    1,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Mixer) SampleRate() int { return m.rate }

// Voice implements voice.Bank. The template voice for a pitch is created
// once; later calls return the same voice.
func (m *Mixer) Voice(name string) (voice.Voice, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.banked[name]; ok {
		return v, true
	}
	smp, ok := m.samples[name]
	if !ok {
		return nil, false
	}
	v := m.newVoiceLocked(smp)
	m.banked[name] = v
	return v, true
}

func (m *Mixer) newVoiceLocked(smp *sample.Sample) *Voice {
	v := &Voice{m: m, sample: smp, volume: 1, target: 1}
	m.voices = append(m.voices, v)
	return v
}

// Playing counts the voices currently sounding.
func (m *Mixer) Playing() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, v := range m.voices {
		if v.playing {
			n++
		}
	}
	return n
}

// Process fills dst (interleaved stereo) with the next frames of every
// playing voice, then applies the master chain and clips to [-1, 1].
func (m *Mixer) Process(dst []float32) {
	clear(dst)
	frames := len(dst) / 2

	m.mu.Lock()
	active := 0
	for _, v := range m.voices {
		if !v.playing {
			continue
		}
		active++
		v.mix(dst, frames, m.gain)
	}
	m.master.ProcessInterleaved(dst)
	m.mu.Unlock()

	for i, s := range dst {
		if s > 1 {
			dst[i] = 1
		} else if s < -1 {
			dst[i] = -1
		}
	}
	if active > 0 {
		debug.Sometimes(2*time.Second, "mixer", "%d voices sounding", active)
	}
}

// Voice plays one sample. It implements voice.Voice.
type Voice struct {
	m       *Mixer
	sample  *sample.Sample
	pos     int
	playing bool
	volume  float32 // current, ramps toward target
	target  float32
}

func (v *Voice) mix(dst []float32, frames int, gain float32) {
	step := float32(1) / volumeRamp
	src := v.sample.Frames
	for i := 0; i < frames; i++ {
		if v.pos >= len(src) {
			v.playing = false
			return
		}
		switch {
		case v.volume < v.target:
			v.volume = min(v.volume+step, v.target)
		case v.volume > v.target:
			v.volume = max(v.volume-step, v.target)
		}
		g := v.volume * gain
		dst[2*i] += src[v.pos][0] * g
		dst[2*i+1] += src[v.pos][1] * g
		v.pos++
	}
}

func (v *Voice) Play() error {
	if len(v.sample.Frames) == 0 {
		return ErrEmptySample
	}
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	v.playing = true
	return nil
}

func (v *Voice) Pause() {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	v.playing = false
}

func (v *Voice) Rewind() error {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	v.pos = 0
	// a restarted note starts at its target level rather than ramping
	// up from the faded level of its previous use
	v.volume = v.target
	return nil
}

func (v *Voice) SetVolume(vol float64) {
	vol = min(max(vol, 0), 1)
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	v.target = float32(vol)
}

func (v *Voice) Volume() float64 {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	return float64(v.target)
}

func (v *Voice) Playing() bool {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	return v.playing
}

// Clone adds a voice over the same sample to the mixer.
func (v *Voice) Clone() (voice.Voice, error) {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	return v.m.newVoiceLocked(v.sample), nil
}

// NewMaster builds the default master chain: room reverb into a limiter.
// A nil room leaves the output dry.
func NewMaster(rate int, room *effects.RoomConfig) *effects.Chain {
	chain := effects.NewChain()
	if room != nil {
		chain.Add(effects.NewReverb(rate, *room))
	}
	chain.Add(effects.NewMasterLimiter(rate))
	return chain
}
