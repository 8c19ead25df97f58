package melody

import (
	"errors"
	"fmt"

	"github.com/cbegin/vpiano-go/internal/pitch"
)

// Scale types understood by Pattern.
const (
	Major = "maj"
	Minor = "min"
)

var (
	ErrUnknownPitch = errors.New("melody: unknown pitch")
	ErrOutOfRange   = errors.New("melody: scale runs past the keyboard")
)

// Semitone steps between consecutive scale degrees.
var patterns = map[string][]int{
	Major: {2, 2, 1, 2, 2, 2, 1},
	Minor: {2, 1, 2, 2, 1, 2, 2},
}

// Pattern returns the step pattern for a scale type. Unknown types yield an
// empty pattern, i.e. a scale holding only its root.
func Pattern(scaleType string) []int {
	p := patterns[scaleType]
	out := make([]int, len(p))
	copy(out, p)
	return out
}

// NotesByPattern walks the pitch table from root, one step per pattern
// entry. The result holds len(pattern)+1 pitches.
func NotesByPattern(root string, pattern []int) ([]pitch.Pitch, error) {
	start, ok := pitch.Lookup(root)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPitch, root)
	}
	notes := make([]pitch.Pitch, 0, len(pattern)+1)
	notes = append(notes, start)
	idx := start.Index
	for _, step := range pattern {
		idx += step
		p, ok := pitch.At(idx)
		if !ok {
			return nil, fmt.Errorf("%w: %s plus %d semitones", ErrOutOfRange, root, idx-start.Index)
		}
		notes = append(notes, p)
	}
	return notes, nil
}

// KeyNotes builds the scale of the given type starting at root.
func KeyNotes(root, scaleType string) ([]pitch.Pitch, error) {
	return NotesByPattern(root, Pattern(scaleType))
}
