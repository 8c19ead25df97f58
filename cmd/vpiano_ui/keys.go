package main

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/cbegin/vpiano-go/internal/melody"
	"github.com/cbegin/vpiano-go/internal/pitch"
)

type keyBinding struct {
	key  ebiten.Key
	code int
}

var letterKeys = []ebiten.Key{
	ebiten.KeyA, ebiten.KeyB, ebiten.KeyC, ebiten.KeyD, ebiten.KeyE, ebiten.KeyF, ebiten.KeyG,
	ebiten.KeyH, ebiten.KeyI, ebiten.KeyJ, ebiten.KeyK, ebiten.KeyL, ebiten.KeyM, ebiten.KeyN,
	ebiten.KeyO, ebiten.KeyP, ebiten.KeyQ, ebiten.KeyR, ebiten.KeyS, ebiten.KeyT, ebiten.KeyU,
	ebiten.KeyV, ebiten.KeyW, ebiten.KeyX, ebiten.KeyY, ebiten.KeyZ,
}

var digitKeys = []ebiten.Key{
	ebiten.KeyDigit0, ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4,
	ebiten.KeyDigit5, ebiten.KeyDigit6, ebiten.KeyDigit7, ebiten.KeyDigit8, ebiten.KeyDigit9,
}

// keyBindings maps every ebiten key that can produce a piano code: the
// pitch codes, the pedal and the melody digits.
var keyBindings = buildBindings()

func buildBindings() []keyBinding {
	seen := map[int]bool{}
	var out []keyBinding
	add := func(code int) {
		if seen[code] {
			return
		}
		if k, ok := ebitenKey(code); ok {
			seen[code] = true
			out = append(out, keyBinding{key: k, code: code})
		}
	}
	for _, p := range pitch.All() {
		add(p.Code)
	}
	for _, c := range pitch.MelodyCodes {
		add(c)
	}
	add(pitch.PedalCode)
	return out
}

// ebitenKey maps an upper-case ASCII key code to ebiten's key.
func ebitenKey(code int) (ebiten.Key, bool) {
	switch {
	case code >= 'A' && code <= 'Z':
		return letterKeys[code-'A'], true
	case code >= '0' && code <= '9':
		return digitKeys[code-'0'], true
	case code == ' ':
		return ebiten.KeySpace, true
	}
	return 0, false
}

// whiteIndex gives each pitch the index of the white key at or left of it.
var whiteIndex, whiteCount = buildWhiteIndex()

func buildWhiteIndex() (map[int]int, int) {
	idx := make(map[int]int, pitch.Len())
	n := 0
	for _, p := range pitch.All() {
		if p.Accidental {
			idx[p.Index] = n
			continue
		}
		idx[p.Index] = n
		n++
	}
	return idx, n
}

func keyLabel(k string) string {
	if k == melody.Random {
		return titleCase.String(k)
	}
	return k
}

func checkLabel(label string, on bool) string {
	if on {
		return "[x] " + label
	}
	return "[ ] " + label
}

func indexOf(choices []string, v string) int {
	for i, c := range choices {
		if c == v {
			return i
		}
	}
	return 0
}

// mix blends a toward b by t in 0..1.
func mix(a, b color.Color, t float64) color.Color {
	ar, ag, ab, _ := a.RGBA()
	br, bg, bb, _ := b.RGBA()
	lerp := func(x, y uint32) uint8 {
		return uint8((float64(x)*(1-t) + float64(y)*t) / 257)
	}
	return color.RGBA{lerp(ar, br), lerp(ag, bg), lerp(ab, bb), 255}
}

func shortenEnd(s string, maxChars int) string {
	r := []rune(s)
	if len(r) <= maxChars {
		return s
	}
	if maxChars <= 3 {
		return string(r[:max(0, maxChars)])
	}
	return string(r[:maxChars-3]) + "..."
}

func pointInRect(x, y int, rect image.Rectangle) bool {
	return x >= rect.Min.X && x < rect.Max.X && y >= rect.Min.Y && y < rect.Max.Y
}
