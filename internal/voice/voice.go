package voice

// Voice is one playable instance of a pitch's sample.
type Voice interface {
	// Play starts playback from the current position. Hosts may refuse,
	// e.g. when the sample is not ready yet.
	Play() error
	Pause()
	// Rewind moves the playback position back to the start.
	Rewind() error
	SetVolume(v float64)
	Volume() float64
	// Clone returns an independent voice over the same sample.
	Clone() (Voice, error)
}

// Bank resolves pitch names to template voices.
type Bank interface {
	// Voice returns the template voice for a pitch, or false if no sample
	// is loaded for it.
	Voice(name string) (Voice, bool)
}

// BankFunc adapts a function to the Bank interface.
type BankFunc func(name string) (Voice, bool)

func (f BankFunc) Voice(name string) (Voice, bool) { return f(name) }
