package voice

import "github.com/cbegin/vpiano-go/internal/debug"

// DefaultPoolSize is the number of voices kept per pitch.
const DefaultPoolSize = 3

// Pool hands out voices per pitch in round-robin order, so quick retriggers
// of one pitch land on different voices instead of cutting the previous one.
// A Pool is not safe for concurrent use.
type Pool struct {
	bank  Bank
	size  int
	rings map[string]*ring
}

type ring struct {
	voices []Voice
	next   int
	active Voice
}

func NewPool(bank Bank, size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{bank: bank, size: size, rings: make(map[string]*ring)}
}

// Acquire returns the next voice for the pitch and binds it as the pitch's
// active voice. It returns nil when the bank has no sample for the pitch.
func (p *Pool) Acquire(name string) Voice {
	r := p.ring(name)
	if r == nil {
		return nil
	}
	v := r.voices[r.next]
	r.next = (r.next + 1) % len(r.voices)
	r.active = v
	return v
}

// Trigger acquires a voice and restarts it at full volume.
func (p *Pool) Trigger(name string) Voice {
	v := p.Acquire(name)
	if v == nil {
		return nil
	}
	v.Pause()
	v.SetVolume(1)
	if err := v.Rewind(); err != nil {
		debug.Log("voice", "rewind %s: %v", name, err)
	}
	if err := v.Play(); err != nil {
		debug.Log("voice", "play %s: %v", name, err)
	}
	return v
}

// Active returns the voice most recently acquired for the pitch.
func (p *Pool) Active(name string) Voice {
	r, ok := p.rings[name]
	if !ok {
		return nil
	}
	return r.active
}

// Size returns how many voices the pitch owns; zero before first use.
func (p *Pool) Size(name string) int {
	r, ok := p.rings[name]
	if !ok {
		return 0
	}
	return len(r.voices)
}

// Each calls fn for every voice created so far.
func (p *Pool) Each(fn func(name string, v Voice)) {
	for name, r := range p.rings {
		for _, v := range r.voices {
			fn(name, v)
		}
	}
}

func (p *Pool) ring(name string) *ring {
	if r, ok := p.rings[name]; ok {
		return r
	}
	if p.bank == nil {
		return nil
	}
	base, ok := p.bank.Voice(name)
	if !ok || base == nil {
		return nil
	}
	voices := make([]Voice, 0, p.size)
	voices = append(voices, base)
	for i := 1; i < p.size; i++ {
		c, err := base.Clone()
		if err != nil {
			debug.Log("voice", "clone %s: %v", name, err)
			continue
		}
		voices = append(voices, c)
	}
	r := &ring{voices: voices}
	p.rings[name] = r
	return r
}
