package vpiano

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cbegin/vpiano-go/internal/clock"
	"github.com/cbegin/vpiano-go/internal/envelope"
	"github.com/cbegin/vpiano-go/internal/melody"
	"github.com/cbegin/vpiano-go/internal/pitch"
	"github.com/cbegin/vpiano-go/internal/voice"
)

// EventKind identifies what an Event from Watch() reports.
type EventKind int

const (
	EventHighlight  EventKind = iota // a key started sounding
	EventRelease                     // a key stopped; fade its color back over Duration
	EventPedal                       // the sustain pedal moved; see On
	EventMelodyText                  // the melody display changed; see Text
	EventKeyText                     // the key display changed; see Text
)

// Event carries visual feedback for front-ends.
type Event struct {
	Kind       EventKind
	Pitch      string
	Accidental bool
	Duration   time.Duration
	On         bool
	Text       string
}

type ReleaseMode = envelope.ReleaseMode

const (
	ReleaseFade = envelope.ReleaseFade
	ReleaseKill = envelope.ReleaseKill
)

type Option func(*pianoConfig)

type pianoConfig struct {
	sched    clock.Scheduler
	poolSize int
	rng      *rand.Rand
	showKey  bool
	release  ReleaseMode
	octave   int
}

func defaultPianoConfig() pianoConfig {
	return pianoConfig{poolSize: voice.DefaultPoolSize, octave: 3}
}

// WithScheduler runs the piano on s instead of its own event loop.
func WithScheduler(s clock.Scheduler) Option {
	return func(cfg *pianoConfig) {
		cfg.sched = s
	}
}

// WithPoolSize sets how many voices each pitch can overlap.
func WithPoolSize(n int) Option {
	return func(cfg *pianoConfig) {
		cfg.poolSize = n
	}
}

func WithRand(r *rand.Rand) Option {
	return func(cfg *pianoConfig) {
		cfg.rng = r
	}
}

// WithShowKey reveals the key of a melody as soon as it is generated.
func WithShowKey(show bool) Option {
	return func(cfg *pianoConfig) {
		cfg.showKey = show
	}
}

func WithReleaseMode(m ReleaseMode) Option {
	return func(cfg *pianoConfig) {
		cfg.release = m
	}
}

// WithOctave sets the octave melodies and scales are rooted in.
func WithOctave(octave int) Option {
	return func(cfg *pianoConfig) {
		cfg.octave = octave
	}
}

// Piano owns the state of one playable keyboard: voices, envelopes, the
// pedal and the current melody. All state changes run on one scheduler
// thread; the exported methods are safe to call from any goroutine.
type Piano struct {
	sched  clock.Scheduler
	loop   *clock.Loop // owned when no scheduler was supplied
	pool   *voice.Pool
	env    *envelope.Controller
	rng    *rand.Rand
	octave int

	showKey     bool
	melody      melody.Melody
	melodyTimer clock.Timer

	closed    atomic.Bool
	eventCh   chan Event
	eventChMu sync.Mutex
}

var ErrNilBank = errors.New("vpiano: bank must not be nil")

func New(bank voice.Bank, opts ...Option) (*Piano, error) {
	if bank == nil {
		return nil, ErrNilBank
	}
	cfg := defaultPianoConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.poolSize < 1 {
		return nil, errors.New("vpiano: pool size must be positive")
	}
	if _, ok := pitch.Lookup("C" + strconv.Itoa(cfg.octave)); !ok {
		return nil, fmt.Errorf("vpiano: octave %d outside the keyboard", cfg.octave)
	}
	p := &Piano{
		sched:   cfg.sched,
		rng:     cfg.rng,
		octave:  cfg.octave,
		showKey: cfg.showKey,
	}
	if p.sched == nil {
		p.loop = clock.NewLoop()
		p.sched = p.loop
	}
	if p.rng == nil {
		seed := uint64(time.Now().UnixNano())
		p.rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	p.pool = voice.NewPool(bank, cfg.poolSize)
	p.env = envelope.NewController(p.sched, p.pool, listener{p})
	p.env.SetReleaseMode(cfg.release)
	return p, nil
}

// listener forwards envelope feedback to watchers.
type listener struct{ p *Piano }

func (l listener) Highlight(pt pitch.Pitch) {
	l.p.sendEvent(Event{Kind: EventHighlight, Pitch: pt.Name, Accidental: pt.Accidental})
}

func (l listener) Released(pt pitch.Pitch, d time.Duration) {
	l.p.sendEvent(Event{Kind: EventRelease, Pitch: pt.Name, Accidental: pt.Accidental, Duration: d})
}

func (p *Piano) do(f func()) {
	if p.closed.Load() {
		return
	}
	p.sched.Do(f)
}

// PressCode handles a physical key going down.
func (p *Piano) PressCode(code int) {
	p.do(func() {
		if code == pitch.PedalCode {
			if !p.env.Sustaining() {
				p.env.SetSustain(true)
				p.sendEvent(Event{Kind: EventPedal, On: true})
			}
			return
		}
		if pt, ok := pitch.ByCode(code); ok {
			p.env.Press(pt.Name)
			return
		}
		if i, ok := pitch.MelodyIndex(code); ok && i < len(p.melody.Notes) {
			p.playMelody([]string{p.melody.Notes[i].Name})
		}
	})
}

// ReleaseCode handles a physical key coming up.
func (p *Piano) ReleaseCode(code int) {
	p.do(func() {
		if code == pitch.PedalCode {
			if p.env.Sustaining() {
				p.env.SetSustain(false)
				p.sendEvent(Event{Kind: EventPedal, On: false})
			}
			return
		}
		if pt, ok := pitch.ByCode(code); ok {
			p.env.Release(pt.Name)
		}
	})
}

// Press handles a pointer going down on the named key.
func (p *Piano) Press(name string) {
	p.do(func() { p.env.Press(name) })
}

// Release handles a pointer coming up from the named key.
func (p *Piano) Release(name string) {
	p.do(func() { p.env.Release(name) })
}

// SetSustain moves the pedal without a key code.
func (p *Piano) SetSustain(on bool) {
	code := pitch.PedalCode
	if on {
		p.PressCode(code)
		return
	}
	p.ReleaseCode(code)
}

// SetReleaseMode switches between fading and killing released keys.
func (p *Piano) SetReleaseMode(m ReleaseMode) {
	p.do(func() { p.env.SetReleaseMode(m) })
}

// State reports the envelope state of the named pitch.
func (p *Piano) State(name string) envelope.State {
	s := envelope.Silent
	p.do(func() { s = p.env.State(name) })
	return s
}

func (p *Piano) Sustaining() bool {
	var on bool
	p.do(func() { on = p.env.Sustaining() })
	return on
}

// Busy reports whether a melody is still stepping or any pitch is sounding.
func (p *Piano) Busy() bool {
	busy := false
	p.do(func() {
		if p.melodyTimer != nil {
			busy = true
			return
		}
		for _, pt := range pitch.All() {
			if p.env.State(pt.Name) != envelope.Silent {
				busy = true
				return
			}
		}
	})
	return busy
}

func (p *Piano) sendEvent(ev Event) {
	p.eventChMu.Lock()
	defer p.eventChMu.Unlock()
	if p.eventCh == nil {
		return
	}
	select {
	case p.eventCh <- ev:
	default:
		// Channel full; drop event
	}
}

// Watch returns a channel that receives visual feedback events. Only the most
// recent Watch() channel receives events. The channel is buffered and events
// are dropped when it is full; it is closed by Close.
func (p *Piano) Watch() <-chan Event {
	ch := make(chan Event, 256)
	p.eventChMu.Lock()
	p.eventCh = ch
	p.eventChMu.Unlock()
	return ch
}

// Close silences the piano, cancels its timers and stops its event loop.
func (p *Piano) Close() error {
	p.do(func() {
		if p.melodyTimer != nil {
			p.melodyTimer.Stop()
			p.melodyTimer = nil
		}
		p.env.Close()
	})
	if p.closed.Swap(true) {
		return nil
	}
	if p.loop != nil {
		p.loop.Close()
	}
	p.eventChMu.Lock()
	if p.eventCh != nil {
		close(p.eventCh)
		p.eventCh = nil
	}
	p.eventChMu.Unlock()
	return nil
}
