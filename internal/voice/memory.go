package voice

import "sync"

// Memory is a Bank of silent voices that only record what was asked of
// them. It backs the headless output and tests.
type Memory struct {
	mu        sync.Mutex
	templates map[string]*MemoryVoice
	created   map[string][]*MemoryVoice
	// PlayErr, when set, is returned by every Play call.
	PlayErr error
}

// MemoryVoice is a Voice that tracks its playback state.
type MemoryVoice struct {
	bank    *Memory
	name    string
	ID      int
	playing bool
	volume  float64
	Plays   int
	Pauses  int
	Rewinds int
}

// NewMemory returns a bank with a sample for each of names.
func NewMemory(names ...string) *Memory {
	m := &Memory{
		templates: make(map[string]*MemoryVoice),
		created:   make(map[string][]*MemoryVoice),
	}
	for _, n := range names {
		v := &MemoryVoice{bank: m, name: n, volume: 1}
		m.templates[n] = v
		m.created[n] = []*MemoryVoice{v}
	}
	return m
}

func (m *Memory) Voice(name string) (Voice, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.templates[name]
	if !ok {
		return nil, false
	}
	return v, true
}

// Voices returns the template and every clone made for a pitch.
func (m *Memory) Voices(name string) []*MemoryVoice {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*MemoryVoice, len(m.created[name]))
	copy(out, m.created[name])
	return out
}

func (v *MemoryVoice) Play() error {
	v.Plays++
	if v.bank.PlayErr != nil {
		return v.bank.PlayErr
	}
	v.playing = true
	return nil
}

func (v *MemoryVoice) Pause() {
	v.Pauses++
	v.playing = false
}

func (v *MemoryVoice) Rewind() error {
	v.Rewinds++
	return nil
}

func (v *MemoryVoice) SetVolume(vol float64) {
	if vol < 0 {
		vol = 0
	}
	if vol > 1 {
		vol = 1
	}
	v.volume = vol
}

func (v *MemoryVoice) Volume() float64 { return v.volume }

// Playing reports whether the voice was started and not paused since.
func (v *MemoryVoice) Playing() bool { return v.playing }

func (v *MemoryVoice) Clone() (Voice, error) {
	m := v.bank
	m.mu.Lock()
	defer m.mu.Unlock()
	c := &MemoryVoice{bank: m, name: v.name, ID: len(m.created[v.name]), volume: v.volume}
	m.created[v.name] = append(m.created[v.name], c)
	return c, nil
}
