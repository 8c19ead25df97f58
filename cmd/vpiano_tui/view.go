package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cbegin/vpiano-go/internal/melody"
	"github.com/cbegin/vpiano-go/internal/pitch"
)

const cellW = 4

var (
	panelStyle = lipgloss.NewStyle().
			Padding(1, 3).
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("#444444"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Padding(0, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00E6C3"))

	settingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00E6C3")).
			Background(lipgloss.Color("#111111")).
			Padding(0, 1)

	whiteKey = lipgloss.NewStyle().
			Width(cellW).
			Align(lipgloss.Center).
			Foreground(lipgloss.Color("#222222")).
			Background(lipgloss.Color("#EEEEEE"))

	blackKey = lipgloss.NewStyle().
			Width(cellW).
			Align(lipgloss.Center).
			Foreground(lipgloss.Color("#AAAAAA")).
			Background(lipgloss.Color("#111111"))

	litKey = whiteKey.
		Foreground(lipgloss.Color("#000000")).
		Background(lipgloss.Color("#00E6C3")).
		Bold(true)

	litBlackKey = litKey.
			Background(lipgloss.Color("#A070E0"))

	fadingKey = whiteKey.
			Background(lipgloss.Color("#7FC8BC"))

	textStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	pedalOn   = lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#00C000")).Padding(0, 1)
	pedalOff  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")).Background(lipgloss.Color("#222222")).Padding(0, 1)
)

var titleCase = cases.Title(language.English)

var scaleLabels = map[string]string{melody.Random: "random", melody.Major: "major", melody.Minor: "minor"}

func (m model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}
	now := time.Now()

	settings := []string{
		settingStyle.Render("Key " + titleCase.String(keyChoices[m.keyIdx])),
		settingStyle.Render(titleCase.String(scaleLabels[scaleChoices[m.scaleIdx]])),
		settingStyle.Render(fmt.Sprintf("%d notes", m.notes)),
		settingStyle.Render("Release " + m.cfg.Piano.ReleaseMode),
		settingStyle.Render(checkLabel("show key", m.showKey)),
	}
	header := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("VPIANO"), "  ",
		strings.Join(settings, " "),
	)

	pedal := pedalOff.Render("pedal")
	if m.pedal {
		pedal = pedalOn.Render("PEDAL")
	}
	info := lipgloss.JoinVertical(lipgloss.Left,
		textStyle.Render("Melody: "+m.melodyText),
		textStyle.Render("Key:    "+m.keyText),
		pedal,
	)

	ui := lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		m.keyboard(now),
		"",
		info,
		dimStyle.Render(m.status),
		m.help.View(keys),
	)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, panelStyle.Render(ui))
}

// keyboard draws the black keys on a row offset by half a key above the
// white keys, each labelled with its note and computer key.
func (m model) keyboard(now time.Time) string {
	var (
		blackNames, blackCodes = []string{strings.Repeat(" ", cellW/2)}, []string{strings.Repeat(" ", cellW/2)}
		whiteNames, whiteCodes []string
	)
	gap := strings.Repeat(" ", cellW)
	all := pitch.All()
	for i, p := range all {
		if p.Accidental {
			continue
		}
		style := m.keyStyle(p, now)
		whiteNames = append(whiteNames, style.Render(p.Name))
		whiteCodes = append(whiteCodes, style.Render(string(rune(p.Code))))
		if i == len(all)-1 {
			break
		}
		if next := all[i+1]; next.Accidental {
			bs := m.keyStyle(next, now)
			blackNames = append(blackNames, bs.Render(next.Name))
			blackCodes = append(blackCodes, bs.Render(string(rune(next.Code))))
		} else {
			blackNames = append(blackNames, gap)
			blackCodes = append(blackCodes, gap)
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, blackNames...),
		lipgloss.JoinHorizontal(lipgloss.Top, blackCodes...),
		lipgloss.JoinHorizontal(lipgloss.Top, whiteNames...),
		lipgloss.JoinHorizontal(lipgloss.Top, whiteCodes...),
	)
}

func (m model) keyStyle(p pitch.Pitch, now time.Time) lipgloss.Style {
	l := m.lights[p.Name]
	switch {
	case l != nil && l.lit && p.Accidental:
		return litBlackKey
	case l != nil && l.lit:
		return litKey
	case l != nil && now.Before(l.fadeUntil):
		return fadingKey
	case p.Accidental:
		return blackKey
	}
	return whiteKey
}

func checkLabel(label string, on bool) string {
	if on {
		return "[x] " + label
	}
	return "[ ] " + label
}
