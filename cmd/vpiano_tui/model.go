package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/cbegin/vpiano-go"
	"github.com/cbegin/vpiano-go/internal/config"
	"github.com/cbegin/vpiano-go/internal/debug"
	"github.com/cbegin/vpiano-go/internal/melody"
	"github.com/cbegin/vpiano-go/internal/pitch"
)

// Terminals report key presses and auto-repeats but never key releases.
// A held key keeps repeating; once the repeats stop for longer than the
// hold window the key is considered released.
const (
	holdWindow     = 600 * time.Millisecond
	staccatoWindow = 100 * time.Millisecond
	tickInterval   = 30 * time.Millisecond
)

type tickMsg time.Time

type eventMsg vpiano.Event

type heldKey struct {
	lastSeen time.Time
	staccato bool
}

type light struct {
	lit       bool
	fadeUntil time.Time
}

type keyMap struct {
	Generate key.Binding
	Play     key.Binding
	Scale    key.Binding
	Show     key.Binding
	Key      key.Binding
	Type     key.Binding
	Notes    key.Binding
	ShowKey  key.Binding
	Release  key.Binding
	Pedal    key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func Key(help string, keyboardKey ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keyboardKey...), key.WithHelp(keyboardKey[0], help))
}

var keys = keyMap{
	Generate: Key("generate", "ctrl+g"),
	Play:     Key("play", "ctrl+p"),
	Scale:    Key("scale", "ctrl+s"),
	Show:     Key("show", "ctrl+o"),
	Key:      Key("key", "ctrl+k"),
	Type:     Key("major/minor", "ctrl+t"),
	Notes:    Key("notes", "ctrl+n"),
	ShowKey:  Key("show key", "ctrl+e"),
	Release:  Key("fade/kill", "ctrl+r"),
	Pedal:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pedal")),
	Help:     Key("help", "?"),
	Quit:     Key("quit", "esc", "ctrl+c"),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Generate, k.Play, k.Pedal, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Generate, k.Play, k.Scale, k.Show},
		{k.Key, k.Type, k.Notes, k.ShowKey},
		{k.Release, k.Pedal, k.Help, k.Quit},
	}
}

type model struct {
	cfg    *config.Config
	piano  *vpiano.Piano
	events <-chan vpiano.Event
	help   help.Model

	held   map[int]*heldKey
	lights map[string]*light
	pedal  bool

	keyIdx   int
	scaleIdx int
	notes    int
	showKey  bool

	melodyText string
	keyText    string
	status     string

	width, height int
}

var (
	keyChoices   = append([]string{melody.Random}, pitch.NoteNames...)
	scaleChoices = []string{melody.Random, melody.Major, melody.Minor}
)

func newModel(cfg *config.Config, p *vpiano.Piano) model {
	m := model{
		cfg:      cfg,
		piano:    p,
		events:   p.Watch(),
		help:     help.New(),
		held:     make(map[int]*heldKey),
		lights:   make(map[string]*light, pitch.Len()),
		keyIdx:   indexOf(keyChoices, cfg.Melody.Key),
		scaleIdx: indexOf(scaleChoices, cfg.Melody.Scale),
		notes:    cfg.Melody.Notes,
		showKey:  cfg.Piano.ShowKey,
	}
	for _, pt := range pitch.All() {
		m.lights[pt.Name] = &light{}
	}
	return m
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitEvent(ch <-chan vpiano.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return eventMsg(ev)
	}
}

func (m model) Init() tea.Cmd { return tea.Batch(tick(), waitEvent(m.events)) }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		m.checkWatchdog(time.Time(msg))
		return m, tick()

	case eventMsg:
		m.apply(vpiano.Event(msg), time.Now())
		return m, waitEvent(m.events)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, keys.Generate):
		m.generate()
	case key.Matches(msg, keys.Play):
		m.piano.PlayCurrentMelody()
	case key.Matches(msg, keys.Scale):
		m.piano.PlayScale()
	case key.Matches(msg, keys.Show):
		m.piano.ShowMelody()
	case key.Matches(msg, keys.Key):
		m.keyIdx = (m.keyIdx + 1) % len(keyChoices)
	case key.Matches(msg, keys.Type):
		m.scaleIdx = (m.scaleIdx + 1) % len(scaleChoices)
	case key.Matches(msg, keys.Notes):
		m.notes = m.notes%melody.MaxLength + 1
	case key.Matches(msg, keys.ShowKey):
		m.showKey = !m.showKey
		m.piano.SetShowKey(m.showKey)
	case key.Matches(msg, keys.Release):
		m.toggleRelease()
	case key.Matches(msg, keys.Pedal):
		// no key-up for the space bar either, so it latches
		m.piano.SetSustain(!m.pedal)
	default:
		if code, staccato, ok := keyCode(msg); ok {
			m.press(code, staccato, time.Now())
		}
	}
	return m, nil
}

// keyCode turns a typed rune into the upper-case key code the piano uses.
// Shift marks a staccato press.
func keyCode(msg tea.KeyMsg) (int, bool, bool) {
	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 {
		return 0, false, false
	}
	r := msg.Runes[0]
	switch {
	case r >= 'a' && r <= 'z':
		return int(r - 'a' + 'A'), false, true
	case r >= 'A' && r <= 'Z':
		return int(r), true, true
	case r >= '0' && r <= '9':
		return int(r), false, true
	}
	return 0, false, false
}

func (m model) press(code int, staccato bool, now time.Time) {
	if _, ok := pitch.ByCode(code); !ok {
		// melody digits fire once and have nothing to hold
		m.piano.PressCode(code)
		return
	}
	if h, ok := m.held[code]; ok {
		h.lastSeen = now
		h.staccato = staccato
		return
	}
	m.held[code] = &heldKey{lastSeen: now, staccato: staccato}
	m.piano.PressCode(code)
}

// checkWatchdog releases keys whose repeats have stopped.
func (m model) checkWatchdog(now time.Time) {
	for code, h := range m.held {
		window := holdWindow
		if h.staccato {
			window = staccatoWindow
		}
		if now.Sub(h.lastSeen) > window {
			delete(m.held, code)
			m.piano.ReleaseCode(code)
		}
	}
}

func (m *model) apply(ev vpiano.Event, now time.Time) {
	switch ev.Kind {
	case vpiano.EventHighlight:
		if l := m.lights[ev.Pitch]; l != nil {
			l.lit = true
		}
	case vpiano.EventRelease:
		if l := m.lights[ev.Pitch]; l != nil {
			l.lit = false
			l.fadeUntil = now.Add(ev.Duration)
		}
	case vpiano.EventPedal:
		m.pedal = ev.On
	case vpiano.EventMelodyText:
		m.melodyText = ev.Text
	case vpiano.EventKeyText:
		m.keyText = ev.Text
	}
}

func (m *model) generate() {
	m.keyText = ""
	mel, err := m.piano.GenerateMelody(keyChoices[m.keyIdx], scaleChoices[m.scaleIdx], m.notes)
	if err != nil {
		m.status = err.Error()
		debug.Log("tui", "generate: %v", err)
		return
	}
	m.status = fmt.Sprintf("generated %d notes", len(mel.Notes))
}

func (m *model) toggleRelease() {
	if m.cfg.KillOnRelease() {
		m.cfg.Piano.ReleaseMode = "fade"
		m.piano.SetReleaseMode(vpiano.ReleaseFade)
		return
	}
	m.cfg.Piano.ReleaseMode = "kill"
	m.piano.SetReleaseMode(vpiano.ReleaseKill)
}

func (m model) saveSelections() {
	m.cfg.Melody.Key = keyChoices[m.keyIdx]
	m.cfg.Melody.Scale = scaleChoices[m.scaleIdx]
	m.cfg.Melody.Notes = m.notes
	m.cfg.Piano.ShowKey = m.showKey
	if err := m.cfg.Save(); err != nil {
		debug.Log("tui", "save config: %v", err)
	}
}

func indexOf(choices []string, v string) int {
	for i, c := range choices {
		if strings.EqualFold(c, v) {
			return i
		}
	}
	return 0
}
