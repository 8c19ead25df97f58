// Package speaker plays a Source through beep's speaker, the output used
// when no ebiten window is running.
package speaker

import (
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	beepspeaker "github.com/gopxl/beep/v2/speaker"
)

// Source produces interleaved stereo float32 frames on demand.
type Source interface {
	Process(dst []float32)
}

// Streamer adapts a Source to beep.Streamer. It never ends.
type Streamer struct {
	src Source
	buf []float32
}

func NewStreamer(src Source) *Streamer {
	return &Streamer{src: src}
}

func (s *Streamer) Stream(samples [][2]float64) (int, bool) {
	need := len(samples) * 2
	if cap(s.buf) < need {
		s.buf = make([]float32, need)
	}
	s.buf = s.buf[:need]
	s.src.Process(s.buf)
	for i := range samples {
		samples[i][0] = float64(s.buf[2*i])
		samples[i][1] = float64(s.buf[2*i+1])
	}
	return len(samples), true
}

func (s *Streamer) Err() error { return nil }

var _ beep.Streamer = (*Streamer)(nil)

// Sink owns the beep speaker while it is open.
type Sink struct {
	once sync.Once
}

// Open initializes the speaker at sampleRate with a buffer of latency and
// starts streaming source.
func Open(sampleRate int, source Source, latency time.Duration) (*Sink, error) {
	sr := beep.SampleRate(sampleRate)
	if err := beepspeaker.Init(sr, sr.N(latency)); err != nil {
		return nil, err
	}
	beepspeaker.Play(NewStreamer(source))
	return &Sink{}, nil
}

func (s *Sink) Close() error {
	s.once.Do(func() {
		beepspeaker.Clear()
		beepspeaker.Close()
	})
	return nil
}
