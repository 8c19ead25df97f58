// Package session assembles a playable piano from a config: it loads the
// sample bank, starts the audio output and builds the Piano over them.
package session

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/cbegin/vpiano-go"
	"github.com/cbegin/vpiano-go/internal/audio"
	"github.com/cbegin/vpiano-go/internal/config"
	"github.com/cbegin/vpiano-go/internal/debug"
	"github.com/cbegin/vpiano-go/internal/effects"
	"github.com/cbegin/vpiano-go/internal/mixer"
	"github.com/cbegin/vpiano-go/internal/pitch"
	"github.com/cbegin/vpiano-go/internal/sample"
	"github.com/cbegin/vpiano-go/internal/speaker"
	"github.com/cbegin/vpiano-go/internal/voice"
)

// builtinLength is the length of each synthesized tone used when no
// recordings are configured.
const builtinLength = 4 * time.Second

// warnf reports degraded setups on stderr.
var warnf = log.Printf

type Session struct {
	Piano   *vpiano.Piano
	Mixer   *mixer.Mixer // nil for the silent backend
	Samples sample.Set
	Source  string // where the samples came from, for display
	sink    io.Closer
}

// Open builds the piano described by cfg. Extra options are applied after
// the ones derived from the config.
func Open(cfg *config.Config, extra ...vpiano.Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Session{}
	var bank voice.Bank
	if cfg.Audio.Backend == config.BackendNone {
		bank = voice.NewMemory(pitch.Names(pitch.All())...)
		s.Source = "silent"
	} else {
		set, src, err := LoadSamples(cfg)
		if err != nil {
			return nil, err
		}
		s.Samples, s.Source = set, src
		var room *effects.RoomConfig
		if cfg.Audio.Reverb {
			r := effects.DefaultRoom
			room = &r
		}
		s.Mixer = mixer.New(cfg.Audio.SampleRate, set,
			mixer.WithGain(float32(cfg.Audio.Gain)),
			mixer.WithMaster(mixer.NewMaster(cfg.Audio.SampleRate, room)))
		bank = s.Mixer

		s.sink, err = openSink(cfg, s.Mixer)
		if err != nil {
			return nil, fmt.Errorf("open %s output: %w", cfg.Audio.Backend, err)
		}
	}

	release := vpiano.ReleaseFade
	if cfg.KillOnRelease() {
		release = vpiano.ReleaseKill
	}
	opts := append([]vpiano.Option{
		vpiano.WithPoolSize(cfg.Piano.PoolSize),
		vpiano.WithReleaseMode(release),
		vpiano.WithShowKey(cfg.Piano.ShowKey),
	}, extra...)
	p, err := vpiano.New(bank, opts...)
	if err != nil {
		s.closeSink()
		return nil, err
	}
	s.Piano = p
	debug.Log("session", "backend=%s samples=%s pool=%d release=%s", cfg.Audio.Backend, s.Source, cfg.Piano.PoolSize, cfg.Piano.ReleaseMode)
	return s, nil
}

func openSink(cfg *config.Config, m *mixer.Mixer) (io.Closer, error) {
	latency := time.Duration(cfg.Audio.LatencyMs) * time.Millisecond
	switch cfg.Audio.Backend {
	case config.BackendEbiten:
		sink, err := audio.Open(cfg.Audio.SampleRate, m, latency)
		if err != nil {
			return nil, err
		}
		return sink, nil
	case config.BackendBeep:
		if latency <= 0 {
			latency = 50 * time.Millisecond
		}
		sink, err := speaker.Open(cfg.Audio.SampleRate, m, latency)
		if err != nil {
			return nil, err
		}
		return sink, nil
	}
	return nil, errors.New("no output for backend")
}

// LoadSamples loads the configured sample directory or SoundFont, falling
// back to the built-in tone. It also describes the source for display.
func LoadSamples(cfg *config.Config) (sample.Set, string, error) {
	rate := cfg.Audio.SampleRate
	switch {
	case cfg.Audio.SampleDir != "":
		set, err := sample.LoadDir(cfg.Audio.SampleDir, rate)
		if err != nil {
			return nil, "", err
		}
		return set, fmt.Sprintf("%s (%d pitches, %s)", cfg.Audio.SampleDir, len(set), humanize.Bytes(set.Bytes())), nil
	case cfg.Audio.SoundFont != "":
		f, err := os.Open(cfg.Audio.SoundFont)
		if err != nil {
			return nil, "", err
		}
		defer f.Close()
		opts := sample.DefaultRenderOptions()
		opts.Program = cfg.Audio.Program
		set, err := sample.RenderSoundFont(f, rate, opts)
		if err != nil {
			return nil, "", err
		}
		return set, fmt.Sprintf("%s program %d", cfg.Audio.SoundFont, cfg.Audio.Program), nil
	}
	warnf("vpiano: no sample directory or SoundFont configured; playing the built-in tone (set -samples or -soundfont for a real piano)")
	debug.Log("session", "falling back to the built-in tone at %d Hz", rate)
	return sample.Synthesize(rate, builtinLength), "built-in tone", nil
}

func (s *Session) closeSink() {
	if s.sink != nil {
		if err := s.sink.Close(); err != nil {
			debug.Log("session", "close output: %v", err)
		}
		s.sink = nil
	}
}

// Close stops the piano and then the audio output.
func (s *Session) Close() error {
	var err error
	if s.Piano != nil {
		err = s.Piano.Close()
	}
	s.closeSink()
	return err
}
