// Package audio plays a Source through ebiten's audio context.
package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// Source produces interleaved stereo float32 frames on demand.
type Source interface {
	Process(dst []float32)
}

// StreamReader adapts a Source to the 32-bit float little-endian byte
// stream ebiten's NewPlayerF32 reads. It never returns io.EOF; the piano
// is a live instrument.
type StreamReader struct {
	mu     sync.Mutex
	source Source
	buf    []float32
}

func NewStreamReader(source Source) *StreamReader {
	return &StreamReader{source: source}
}

const bytesPerFrame = 8 // two float32 channels

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / bytesPerFrame
	if frames == 0 {
		return 0, nil
	}
	need := frames * 2
	if cap(r.buf) < need {
		r.buf = make([]float32, need)
	}
	r.buf = r.buf[:need]
	r.source.Process(r.buf)
	for i, s := range r.buf {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(s))
	}
	return frames * bytesPerFrame, nil
}

var _ io.Reader = (*StreamReader)(nil)

// Sink is a running ebiten audio player over a Source.
type Sink struct {
	player *ebitaudio.Player
}

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
	audioSampleRate  int
)

// sharedAudioContext returns the process-wide ebiten context. ebiten allows
// only one, so every sink must agree on the rate.
func sharedAudioContext(sampleRate int) (*ebitaudio.Context, error) {
	audioContextOnce.Do(func() {
		audioSampleRate = sampleRate
		if ctx := ebitaudio.CurrentContext(); ctx != nil {
			audioContext = ctx
			audioSampleRate = ctx.SampleRate()
			return
		}
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if audioSampleRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

// Open starts playing source. latency sets the player's buffer size; zero
// keeps ebiten's default.
func Open(sampleRate int, source Source, latency time.Duration) (*Sink, error) {
	ctx, err := sharedAudioContext(sampleRate)
	if err != nil {
		return nil, err
	}
	pl, err := ctx.NewPlayerF32(NewStreamReader(source))
	if err != nil {
		return nil, err
	}
	if latency > 0 {
		pl.SetBufferSize(latency)
	}
	pl.Play()
	return &Sink{player: pl}, nil
}

func (s *Sink) Close() error {
	s.player.Pause()
	return s.player.Close()
}
