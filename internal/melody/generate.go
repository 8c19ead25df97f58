package melody

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/cbegin/vpiano-go/internal/pitch"
)

// Random selections accepted by the key and scale pickers.
const Random = "random"

// Melody notes other than the root come from the inner degrees of the
// scale: the third through the seventh.
const (
	minDegree = 2
	maxDegree = 6
	// MaxLength is the longest melody Generate can build: the root plus
	// one of each inner degree.
	MaxLength = 1 + maxDegree - minDegree + 1
)

var ErrLength = errors.New("melody: invalid length")

// Melody is a generated note sequence plus the key it was generated in.
type Melody struct {
	Notes []pitch.Pitch
	Key   string // tonic note name, e.g. "Eb"
	Scale string // Major or Minor
}

// Names returns the pitch names of the melody.
func (m Melody) Names() []string { return pitch.Names(m.Notes) }

// String joins the note names with spaces.
func (m Melody) String() string { return strings.Join(m.Names(), " ") }

// KeyText renders the key as "<tonic> <type>".
func (m Melody) KeyText() string { return m.Key + " " + m.Scale }

func (m Melody) Empty() bool { return len(m.Notes) == 0 }

// Generate builds a melody of length notes: the root followed by distinct
// inner scale degrees in the order they were drawn.
func Generate(rng *rand.Rand, root, scaleType string, length int) ([]pitch.Pitch, error) {
	if length < 1 || length > MaxLength {
		return nil, fmt.Errorf("%w: %d (want 1..%d)", ErrLength, length, MaxLength)
	}
	scale, err := KeyNotes(root, scaleType)
	if err != nil {
		return nil, err
	}
	if length > 1 && len(scale) <= maxDegree {
		return nil, fmt.Errorf("%w: scale %q has no inner degrees", ErrLength, scaleType)
	}
	out := make([]pitch.Pitch, 0, length)
	out = append(out, scale[0])
	for _, pos := range randomDegrees(rng, length-1) {
		out = append(out, scale[pos])
	}
	return out, nil
}

// randomDegrees draws count distinct degrees from [minDegree, maxDegree] by
// rejection sampling. count must not exceed the size of the range.
func randomDegrees(rng *rand.Rand, count int) []int {
	picked := make([]int, 0, count)
	seen := make(map[int]bool, count)
	for len(picked) < count {
		d := minDegree + rng.IntN(maxDegree-minDegree+1)
		if seen[d] {
			continue
		}
		seen[d] = true
		picked = append(picked, d)
	}
	return picked
}

// RandomKey picks a tonic note name.
func RandomKey(rng *rand.Rand) string {
	return pitch.NoteNames[rng.IntN(len(pitch.NoteNames))]
}

// RandomScale picks major or minor with equal odds.
func RandomScale(rng *rand.Rand) string {
	if rng.IntN(100) < 50 {
		return Minor
	}
	return Major
}

// Resolve turns "random" selections into concrete ones and validates the
// rest.
func Resolve(rng *rand.Rand, key, scaleType string) (string, string, error) {
	if key == Random {
		key = RandomKey(rng)
	}
	if scaleType == Random {
		scaleType = RandomScale(rng)
	}
	if !pitch.IsNoteName(key) {
		return "", "", fmt.Errorf("%w: key %q", ErrUnknownPitch, key)
	}
	return key, scaleType, nil
}
