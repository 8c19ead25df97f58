package pitch

// Pitch is one playable key of the piano.
type Pitch struct {
	Name       string
	Index      int
	Code       int  // physical key code that triggers the pitch
	MIDI       int  // MIDI note number, A2 = 45
	Accidental bool // rests black on the keyboard
}

const (
	// PedalCode is the key code (space) reserved for the sustain pedal.
	PedalCode = 32
	// Tonic is the lowest pitch of the table.
	Tonic = "A2"

	tonicMIDI = 45
)

var (
	names = [...]string{
		"A2", "Bb2", "B2",
		"C3", "Db3", "D3", "Eb3", "E3", "F3", "Gb3", "G3", "Ab3", "A3", "Bb3", "B3",
		"C4", "Db4", "D4", "Eb4", "E4", "F4", "Gb4", "G4", "Ab4", "A4", "Bb4", "B4",
		"C5",
	}

	// QWERTY layout. Lower register: Z..M with S..L as black keys.
	// Upper register: Q..P with 2..9 as black keys.
	codes = [len(names)]int{
		90, 83, 88, 67, 70, 86, 71, 66, 78, 74, 77, 75, 81, 50,
		87, 69, 52, 82, 53, 84, 89, 55, 85, 56, 73, 57, 79, 80,
	}

	accidentals = map[string]bool{
		"Db": true, "Eb": true, "Gb": true, "Ab": true, "Bb": true,
	}

	// NoteNames lists the twelve chromatic note names used to pick a key.
	NoteNames = []string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}

	// MelodyCodes are the digit keys 1..9,0 selecting melody notes 0..9.
	MelodyCodes = []int{49, 50, 51, 52, 53, 54, 55, 56, 57, 48}

	table  []Pitch
	byName map[string]int
	byCode map[int]int
)

func init() {
	table = make([]Pitch, len(names))
	byName = make(map[string]int, len(names))
	byCode = make(map[int]int, len(names))
	for i, name := range names {
		table[i] = Pitch{
			Name:       name,
			Index:      i,
			Code:       codes[i],
			MIDI:       tonicMIDI + i,
			Accidental: accidentals[noteName(name)],
		}
		byName[name] = i
		byCode[codes[i]] = i
	}
}

// noteName strips the octave digit from a pitch name.
func noteName(name string) string {
	return name[:len(name)-1]
}

// Len returns the number of pitches in the table.
func Len() int { return len(table) }

// All returns a copy of the table in ascending order.
func All() []Pitch {
	out := make([]Pitch, len(table))
	copy(out, table)
	return out
}

// At returns the pitch at index i.
func At(i int) (Pitch, bool) {
	if i < 0 || i >= len(table) {
		return Pitch{}, false
	}
	return table[i], true
}

// Lookup finds a pitch by name, e.g. "Db3".
func Lookup(name string) (Pitch, bool) {
	i, ok := byName[name]
	if !ok {
		return Pitch{}, false
	}
	return table[i], true
}

// ByCode finds the pitch bound to a key code. The pedal and melody-only
// codes are not bound to pitches.
func ByCode(code int) (Pitch, bool) {
	i, ok := byCode[code]
	if !ok {
		return Pitch{}, false
	}
	return table[i], true
}

// MelodyIndex returns the melody position selected by a digit code.
func MelodyIndex(code int) (int, bool) {
	for i, c := range MelodyCodes {
		if c == code {
			return i, true
		}
	}
	return 0, false
}

// IsNoteName reports whether s is one of the twelve chromatic names.
func IsNoteName(s string) bool {
	for _, n := range NoteNames {
		if n == s {
			return true
		}
	}
	return false
}

// Names maps pitches to their names.
func Names(ps []Pitch) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}
