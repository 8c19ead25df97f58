package vpiano

import (
	"fmt"
	"strconv"
	"time"

	"github.com/cbegin/vpiano-go/internal/debug"
	"github.com/cbegin/vpiano-go/internal/melody"
)

// Melody playback articulation: each note is let go before the next one
// starts, giving a detached feel.
const (
	NoteDuration = 800 * time.Millisecond
	ReleaseDelay = 650 * time.Millisecond
)

// Melody is a generated melody and the key it was generated in.
type Melody = melody.Melody

// GenerateMelody builds a new melody in key (a note name such as "Eb", or
// "random") and scaleType ("maj", "min" or "random"), makes it the current
// melody and plays it.
func (p *Piano) GenerateMelody(key, scaleType string, length int) (Melody, error) {
	var (
		m   Melody
		err error
	)
	p.do(func() {
		key, scaleType, err = melody.Resolve(p.rng, key, scaleType)
		if err != nil {
			err = fmt.Errorf("generate melody: %w", err)
			return
		}
		root := key + strconv.Itoa(p.octave)
		notes, genErr := melody.Generate(p.rng, root, scaleType, length)
		if genErr != nil {
			err = fmt.Errorf("generate %s %s melody: %w", key, scaleType, genErr)
			return
		}
		m = Melody{Notes: notes, Key: key, Scale: scaleType}
		p.melody = m
		debug.Log("melody", "generated %s (%s)", m.String(), m.KeyText())
		if p.showKey {
			p.sendEvent(Event{Kind: EventKeyText, Text: m.KeyText()})
		}
		p.sendEvent(Event{Kind: EventMelodyText, Text: ""})
		p.playMelody(m.Names())
	})
	return m, err
}

// Melody returns the current melody; it is empty until one is generated.
func (p *Piano) Melody() Melody {
	var m Melody
	p.do(func() { m = p.melody })
	return m
}

// PlayCurrentMelody replays the current melody, if any.
func (p *Piano) PlayCurrentMelody() {
	p.do(func() {
		if p.melody.Empty() {
			return
		}
		p.playMelody(p.melody.Names())
	})
}

// PlayScale plays the full scale of the current melody's key.
func (p *Piano) PlayScale() {
	p.do(func() {
		if p.melody.Key == "" || p.melody.Scale == "" {
			return
		}
		notes, err := melody.KeyNotes(p.melody.Key+strconv.Itoa(p.octave), p.melody.Scale)
		if err != nil {
			debug.Log("melody", "scale %s: %v", p.melody.KeyText(), err)
			return
		}
		p.playMelody(melody.Melody{Notes: notes}.Names())
	})
}

// ShowMelody reveals the current melody and its key.
func (p *Piano) ShowMelody() {
	p.do(func() {
		if p.melody.Empty() || p.melody.Key == "" {
			return
		}
		p.sendEvent(Event{Kind: EventMelodyText, Text: p.melody.String()})
		p.sendEvent(Event{Kind: EventKeyText, Text: p.melody.KeyText()})
	})
}

// SetShowKey controls whether GenerateMelody reveals the key.
func (p *Piano) SetShowKey(show bool) {
	p.do(func() { p.showKey = show })
}

// PlayMelody plays the named pitches one after another, replacing any
// melody that is still playing. Unknown names keep their time slot silent.
func (p *Piano) PlayMelody(names []string) {
	p.do(func() { p.playMelody(names) })
}

// playMelody triggers one note per NoteDuration. Unless the pedal is down,
// each note is released ReleaseDelay after it starts. Only the step chain
// is cancelled by a new melody; scheduled releases still happen.
func (p *Piano) playMelody(names []string) {
	if len(names) == 0 {
		return
	}
	if p.melodyTimer != nil {
		p.melodyTimer.Stop()
		p.melodyTimer = nil
	}
	notes := append([]string(nil), names...)
	i := 0
	var step func()
	step = func() {
		note := notes[i]
		p.env.Trigger(note)
		if !p.env.Sustaining() {
			p.sched.AfterFunc(ReleaseDelay, func() {
				if p.closed.Load() {
					return
				}
				p.env.ReleaseNote(note)
			})
		}
		i++
		if i < len(notes) {
			p.melodyTimer = p.sched.AfterFunc(NoteDuration, step)
			return
		}
		p.melodyTimer = nil
	}
	step()
}
