package envelope

import (
	"time"

	"github.com/cbegin/vpiano-go/internal/clock"
	"github.com/cbegin/vpiano-go/internal/debug"
	"github.com/cbegin/vpiano-go/internal/pitch"
	"github.com/cbegin/vpiano-go/internal/voice"
)

type State int

const (
	Silent State = iota
	Sounding
	Fading
)

func (s State) String() string {
	switch s {
	case Silent:
		return "silent"
	case Sounding:
		return "sounding"
	case Fading:
		return "fading"
	}
	return "unknown"
}

// ReleaseMode selects what happens when a key is let go.
type ReleaseMode int

const (
	ReleaseFade ReleaseMode = iota
	ReleaseKill
)

// ReleaseDuration is how long a released key takes to return to its resting
// color.
const ReleaseDuration = 300 * time.Millisecond

// Listener receives visual feedback for pitches.
type Listener interface {
	Highlight(p pitch.Pitch)
	Released(p pitch.Pitch, d time.Duration)
}

type nopListener struct{}

func (nopListener) Highlight(pitch.Pitch)               {}
func (nopListener) Released(pitch.Pitch, time.Duration) {}

// channel is the per-pitch envelope state. The fade timer lives here so a
// pitch can never have two fades running.
type channel struct {
	state     State
	fade      clock.Timer
	depressed bool
}

func (ch *channel) cancelFade() {
	if ch.fade != nil {
		ch.fade.Stop()
		ch.fade = nil
	}
}

// Controller drives the envelope of every pitch. All methods must run on the
// scheduler's thread.
type Controller struct {
	sched    clock.Scheduler
	pool     *voice.Pool
	listener Listener
	mode     ReleaseMode
	sustain  bool
	channels []channel
}

func NewController(sched clock.Scheduler, pool *voice.Pool, l Listener) *Controller {
	if l == nil {
		l = nopListener{}
	}
	return &Controller{
		sched:    sched,
		pool:     pool,
		listener: l,
		channels: make([]channel, pitch.Len()),
	}
}

func (c *Controller) SetReleaseMode(m ReleaseMode) { c.mode = m }

func (c *Controller) ReleaseMode() ReleaseMode { return c.mode }

func (c *Controller) lookup(name string) (pitch.Pitch, *channel, bool) {
	p, ok := pitch.Lookup(name)
	if !ok {
		return pitch.Pitch{}, nil, false
	}
	return p, &c.channels[p.Index], true
}

// Trigger starts the pitch from the top, whatever state it was in.
func (c *Controller) Trigger(name string) {
	p, ch, ok := c.lookup(name)
	if !ok {
		return
	}
	ch.cancelFade()
	c.pool.Trigger(p.Name)
	ch.state = Sounding
	c.listener.Highlight(p)
}

// Press handles an input key going down. Repeats while held are ignored.
func (c *Controller) Press(name string) {
	_, ch, ok := c.lookup(name)
	if !ok || ch.depressed {
		return
	}
	ch.depressed = true
	c.Trigger(name)
}

// Release handles an input key coming up. While the pedal is held the pitch
// keeps sounding.
func (c *Controller) Release(name string) {
	_, ch, ok := c.lookup(name)
	if !ok {
		return
	}
	ch.depressed = false
	if c.sustain {
		return
	}
	c.ReleaseNote(name)
}

// ReleaseNote applies the release mode to a pitch regardless of input state.
func (c *Controller) ReleaseNote(name string) {
	if c.mode == ReleaseKill {
		c.Stop(name)
		return
	}
	c.Fade(name)
}

// Fade lowers the pitch's active voice step by step until it is quiet
// enough to stop. Silent pitches are left alone.
func (c *Controller) Fade(name string) {
	p, ch, ok := c.lookup(name)
	if !ok || ch.state == Silent {
		return
	}
	v := c.pool.Active(p.Name)
	if v == nil {
		c.Stop(name)
		return
	}
	ch.cancelFade()
	ch.state = Fading
	ch.fade = c.sched.Every(FadeInterval, func() {
		next, done := NextVolume(v.Volume())
		if done {
			c.Stop(p.Name)
			return
		}
		v.SetVolume(next)
		debug.Sometimes(250*time.Millisecond, "envelope", "fade %s vol=%.3f", p.Name, next)
	})
}

// Stop halts the pitch immediately.
func (c *Controller) Stop(name string) {
	p, ch, ok := c.lookup(name)
	if !ok {
		return
	}
	ch.cancelFade()
	if v := c.pool.Active(p.Name); v != nil {
		v.Pause()
	}
	ch.state = Silent
	c.listener.Released(p, ReleaseDuration)
}

// SetSustain sets the pedal. Letting it go releases every sounding pitch
// whose key is not held.
func (c *Controller) SetSustain(on bool) {
	c.sustain = on
	if on {
		return
	}
	for i := range c.channels {
		ch := &c.channels[i]
		if ch.depressed || ch.state == Silent {
			continue
		}
		p, _ := pitch.At(i)
		debug.Log("envelope", "pedal up releases %s", p.Name)
		c.ReleaseNote(p.Name)
	}
}

func (c *Controller) Sustaining() bool { return c.sustain }

// State reports the envelope state of a pitch; unknown pitches are silent.
func (c *Controller) State(name string) State {
	_, ch, ok := c.lookup(name)
	if !ok {
		return Silent
	}
	return ch.state
}

// Depressed reports whether the input key for the pitch is held.
func (c *Controller) Depressed(name string) bool {
	_, ch, ok := c.lookup(name)
	return ok && ch.depressed
}

// Close cancels every fade and pauses every voice.
func (c *Controller) Close() {
	for i := range c.channels {
		c.channels[i].cancelFade()
		c.channels[i].state = Silent
	}
	c.pool.Each(func(_ string, v voice.Voice) { v.Pause() })
}
