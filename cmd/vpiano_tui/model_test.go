package main

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cbegin/vpiano-go"
	"github.com/cbegin/vpiano-go/internal/clock"
	"github.com/cbegin/vpiano-go/internal/config"
	"github.com/cbegin/vpiano-go/internal/envelope"
	"github.com/cbegin/vpiano-go/internal/pitch"
	"github.com/cbegin/vpiano-go/internal/voice"
)

func newTestModel(t *testing.T) model {
	t.Helper()
	p, err := vpiano.New(voice.NewMemory(pitch.Names(pitch.All())...), vpiano.WithScheduler(clock.NewManual()))
	if err != nil {
		t.Fatalf("new piano: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return newModel(config.DefaultConfig(), p)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestKeyCode(t *testing.T) {
	cases := []struct {
		in       tea.KeyMsg
		code     int
		staccato bool
		ok       bool
	}{
		{runes("c"), 'C', false, true},
		{runes("C"), 'C', true, true},
		{runes("3"), '3', false, true},
		{runes("!"), 0, false, false},
		{tea.KeyMsg{Type: tea.KeyEnter}, 0, false, false},
	}
	for _, tc := range cases {
		code, staccato, ok := keyCode(tc.in)
		if code != tc.code || staccato != tc.staccato || ok != tc.ok {
			t.Fatalf("keyCode(%q) = %d %v %v, want %d %v %v", tc.in.String(), code, staccato, ok, tc.code, tc.staccato, tc.ok)
		}
	}
}

func TestWatchdogReleasesAfterRepeatsStop(t *testing.T) {
	m := newTestModel(t)
	now := time.Now()
	m.press('C', false, now)
	if got := m.piano.State("C3"); got != envelope.Sounding {
		t.Fatalf("C3 = %v, want sounding", got)
	}
	// auto-repeat keeps the key held
	m.press('C', false, now.Add(400*time.Millisecond))
	m.checkWatchdog(now.Add(900 * time.Millisecond))
	if got := m.piano.State("C3"); got != envelope.Sounding {
		t.Fatalf("C3 = %v while repeating, want sounding", got)
	}
	m.checkWatchdog(now.Add(1100 * time.Millisecond))
	if got := m.piano.State("C3"); got != envelope.Fading {
		t.Fatalf("C3 = %v after repeats stopped, want fading", got)
	}
	if len(m.held) != 0 {
		t.Fatalf("held = %v, want empty", m.held)
	}
}

func TestStaccatoReleasesQuickly(t *testing.T) {
	m := newTestModel(t)
	now := time.Now()
	m.press('V', true, now)
	m.checkWatchdog(now.Add(150 * time.Millisecond))
	if got := m.piano.State("D3"); got != envelope.Fading {
		t.Fatalf("D3 = %v, want fading", got)
	}
}

func TestPedalLatches(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m = next.(model)
	if !m.piano.Sustaining() {
		t.Fatalf("space should press the pedal")
	}
	m.apply(vpiano.Event{Kind: vpiano.EventPedal, On: true}, time.Now())
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m = next.(model)
	if m.piano.Sustaining() {
		t.Fatalf("second space should lift the pedal")
	}
}

func TestSettingsCycle(t *testing.T) {
	m := newTestModel(t)
	m.notes = 6
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	m = next.(model)
	if m.notes != 1 {
		t.Fatalf("notes = %d, want wrap to 1", m.notes)
	}
	start := m.keyIdx
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlK})
	m = next.(model)
	if m.keyIdx != (start+1)%len(keyChoices) {
		t.Fatalf("keyIdx = %d", m.keyIdx)
	}
}

func TestGenerateUpdatesStatus(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlG})
	m = next.(model)
	if m.status != "generated 5 notes" {
		t.Fatalf("status = %q", m.status)
	}
	if m.piano.Melody().Empty() {
		t.Fatalf("melody should be generated")
	}
}

func TestApplyLights(t *testing.T) {
	m := newTestModel(t)
	now := time.Now()
	m.apply(vpiano.Event{Kind: vpiano.EventHighlight, Pitch: "C3"}, now)
	if !m.lights["C3"].lit {
		t.Fatalf("C3 should be lit")
	}
	m.apply(vpiano.Event{Kind: vpiano.EventRelease, Pitch: "C3", Duration: 300 * time.Millisecond}, now)
	c3, _ := pitch.Lookup("C3")
	if m.keyStyle(c3, now.Add(100*time.Millisecond)).GetBackground() != fadingKey.GetBackground() {
		t.Fatalf("C3 should be fading")
	}
	if m.keyStyle(c3, now.Add(time.Second)).GetBackground() != whiteKey.GetBackground() {
		t.Fatalf("C3 should be back to white")
	}
}
