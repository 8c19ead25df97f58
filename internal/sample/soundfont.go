package sample

import (
	"fmt"
	"io"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/remeh/sizedwaitgroup"
	"github.com/sinshu/go-meltysynth/meltysynth"

	"github.com/cbegin/vpiano-go/internal/debug"
	"github.com/cbegin/vpiano-go/internal/pitch"
)

// RenderOptions controls how a SoundFont preset is rendered to samples.
type RenderOptions struct {
	Program  int           // General MIDI program, 0 is the acoustic grand
	Velocity int           // 1..127
	Hold     time.Duration // time the key is held down
	Tail     time.Duration // time rendered after note-off
}

func DefaultRenderOptions() RenderOptions {
	return RenderOptions{Velocity: 100, Hold: 3 * time.Second, Tail: time.Second}
}

const renderBlock = 512

// RenderSoundFont renders one sample per keyboard pitch from a SoundFont2
// file. Each pitch gets its own synthesizer so the renders run in parallel.
// The set is normalized to a common peak so relative loudness survives.
func RenderSoundFont(r io.ReadSeeker, rate int, opts RenderOptions) (Set, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("sample: invalid rate %d", rate)
	}
	start := time.Now()
	sf, err := meltysynth.NewSoundFont(r)
	if err != nil {
		return nil, fmt.Errorf("load soundfont: %w", err)
	}
	settings := meltysynth.NewSynthesizerSettings(int32(rate))

	var (
		mu       sync.Mutex
		set      = make(Set)
		firstErr error
	)
	wg := sizedwaitgroup.New(runtime.NumCPU())
	for _, p := range pitch.All() {
		wg.Add()
		go func(p pitch.Pitch) {
			defer wg.Done()
			synth, err := meltysynth.NewSynthesizer(sf, settings)
			if err == nil {
				smp := renderNote(synth, p, rate, opts)
				mu.Lock()
				set[p.Name] = smp
				mu.Unlock()
				return
			}
			mu.Lock()
			if firstErr == nil {
				firstErr = fmt.Errorf("synthesizer for %s: %w", p.Name, err)
			}
			mu.Unlock()
		}(p)
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	set.Normalize(0.9)
	debug.Log("sample", "rendered %d pitches in %v (%s)", len(set), time.Since(start).Round(time.Millisecond), humanize.Bytes(set.Bytes()))
	return set, nil
}

func renderNote(synth *meltysynth.Synthesizer, p pitch.Pitch, rate int, opts RenderOptions) *Sample {
	const ch = 0
	synth.ProcessMidiMessage(ch, 0xC0, int32(opts.Program), 0)
	hold := int(opts.Hold.Seconds() * float64(rate))
	total := hold + int(opts.Tail.Seconds()*float64(rate))
	frames := make([][2]float32, 0, total)
	left := make([]float32, renderBlock)
	right := make([]float32, renderBlock)

	synth.NoteOn(ch, int32(p.MIDI), int32(opts.Velocity))
	released := false
	for pos := 0; pos < total; pos += renderBlock {
		if !released && pos >= hold {
			synth.NoteOff(ch, int32(p.MIDI))
			released = true
		}
		n := min(renderBlock, total-pos)
		synth.Render(left[:n], right[:n])
		for i := 0; i < n; i++ {
			frames = append(frames, [2]float32{left[i], right[i]})
		}
	}
	return &Sample{Name: p.Name, Rate: rate, Frames: frames}
}

// Normalize scales every sample in the set by one gain so the loudest
// frame reaches peak.
func (s Set) Normalize(peak float32) {
	var loudest float32
	for _, smp := range s {
		for _, f := range smp.Frames {
			loudest = max(loudest, abs32(f[0]), abs32(f[1]))
		}
	}
	if loudest == 0 {
		return
	}
	g := peak / loudest
	for _, smp := range s {
		for i := range smp.Frames {
			smp.Frames[i][0] *= g
			smp.Frames[i][1] *= g
		}
	}
}

func abs32(v float32) float32 {
	return float32(math.Abs(float64(v)))
}
