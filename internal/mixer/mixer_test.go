package mixer

import (
	"errors"
	"testing"
	"time"

	"github.com/cbegin/vpiano-go/internal/effects"
	"github.com/cbegin/vpiano-go/internal/sample"
	"github.com/cbegin/vpiano-go/internal/voice"
)

func constSample(name string, frames int, level float32) *sample.Sample {
	s := &sample.Sample{Name: name, Rate: 1000, Frames: make([][2]float32, frames)}
	for i := range s.Frames {
		s.Frames[i] = [2]float32{level, -level}
	}
	return s
}

func newTestMixer(opts ...Option) *Mixer {
	return New(1000, sample.Set{
		"C3": constSample("C3", 200, 0.25),
		"E3": constSample("E3", 50, 0.5),
		"G3": {Name: "G3", Rate: 1000},
	}, opts...)
}

func TestBank(t *testing.T) {
	m := newTestMixer()
	a, ok := m.Voice("C3")
	if !ok {
		t.Fatalf("C3 should be banked")
	}
	b, _ := m.Voice("C3")
	if a != b {
		t.Fatalf("template voice should be reused")
	}
	if _, ok := m.Voice("D3"); ok {
		t.Fatalf("D3 has no sample")
	}
}

func TestSilentUntilPlayed(t *testing.T) {
	m := newTestMixer()
	m.Voice("C3")
	buf := make([]float32, 20)
	m.Process(buf)
	for i, s := range buf {
		if s != 0 {
			t.Fatalf("buf[%d] = %f, want silence", i, s)
		}
	}
}

func TestPlayMixesAndStopsAtEnd(t *testing.T) {
	m := newTestMixer()
	v, _ := m.Voice("E3")
	if err := v.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	buf := make([]float32, 200) // 100 frames, sample has 50
	m.Process(buf)
	if buf[0] != 0.5 || buf[1] != -0.5 {
		t.Fatalf("first frame = %f/%f, want 0.5/-0.5", buf[0], buf[1])
	}
	if buf[98] != 0.5 || buf[100] != 0 {
		t.Fatalf("frames around the end = %f, %f", buf[98], buf[100])
	}
	if m.Playing() != 0 {
		t.Fatalf("voice should stop at the end of its sample")
	}
}

func TestVoicesSum(t *testing.T) {
	m := newTestMixer()
	c, _ := m.Voice("C3")
	clone, err := c.Clone()
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	e, _ := m.Voice("E3")
	for _, v := range []voice.Voice{c, clone, e} {
		v.Play()
	}
	buf := make([]float32, 2)
	m.Process(buf)
	if buf[0] != 1 || buf[1] != -1 {
		t.Fatalf("frame = %f/%f, want 1/-1", buf[0], buf[1])
	}
	if m.Playing() != 3 {
		t.Fatalf("Playing = %d, want 3", m.Playing())
	}
}

func TestOutputIsClipped(t *testing.T) {
	m := newTestMixer(WithGain(4))
	v, _ := m.Voice("E3")
	v.Play()
	buf := make([]float32, 2)
	m.Process(buf)
	if buf[0] != 1 || buf[1] != -1 {
		t.Fatalf("frame = %f/%f, want clipped to 1/-1", buf[0], buf[1])
	}
}

func TestVolumeRamps(t *testing.T) {
	m := newTestMixer()
	v, _ := m.Voice("C3")
	v.Play()
	v.SetVolume(0)
	if v.Volume() != 0 {
		t.Fatalf("Volume = %f, want 0", v.Volume())
	}
	buf := make([]float32, 2*volumeRamp)
	m.Process(buf)
	if buf[0] <= 0 || buf[0] >= 0.25 {
		t.Fatalf("first frame = %f, want part way down", buf[0])
	}
	if last := buf[len(buf)-2]; last != 0 {
		t.Fatalf("last frame = %f, want 0 after the ramp", last)
	}
	v.SetVolume(3)
	if v.Volume() != 1 {
		t.Fatalf("Volume = %f, want clamped to 1", v.Volume())
	}
}

func TestRewindRestarts(t *testing.T) {
	m := newTestMixer()
	v, _ := m.Voice("E3")
	v.Play()
	m.Process(make([]float32, 200))
	v.Rewind()
	v.Play()
	buf := make([]float32, 2)
	m.Process(buf)
	if buf[0] != 0.5 {
		t.Fatalf("rewound frame = %f, want 0.5", buf[0])
	}
	v.Pause()
	if m.Playing() != 0 {
		t.Fatalf("paused voice still playing")
	}
}

func TestEmptySampleRefusesPlay(t *testing.T) {
	m := newTestMixer()
	v, _ := m.Voice("G3")
	if err := v.Play(); !errors.Is(err, ErrEmptySample) {
		t.Fatalf("Play err = %v, want ErrEmptySample", err)
	}
}

func TestMasterChain(t *testing.T) {
	m := newTestMixer(WithMaster(effects.NewChain(effects.Gain(0.5))))
	v, _ := m.Voice("E3")
	v.Play()
	buf := make([]float32, 2)
	m.Process(buf)
	if buf[0] != 0.25 {
		t.Fatalf("frame = %f, want 0.25", buf[0])
	}
}

func TestPoolOverMixer(t *testing.T) {
	set := sample.Synthesize(1000, 100*time.Millisecond)
	m := New(1000, set, WithMaster(NewMaster(1000, &effects.DefaultRoom)))
	pool := voice.NewPool(m, voice.DefaultPoolSize)
	for i := 0; i < 4; i++ {
		pool.Trigger("A2")
	}
	if got := pool.Size("A2"); got != voice.DefaultPoolSize {
		t.Fatalf("pool size = %d, want %d", got, voice.DefaultPoolSize)
	}
	if got := m.Playing(); got != voice.DefaultPoolSize {
		t.Fatalf("playing = %d, want %d", got, voice.DefaultPoolSize)
	}
}
