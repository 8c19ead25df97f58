package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hako/durafmt"

	"github.com/cbegin/vpiano-go/internal/config"
	"github.com/cbegin/vpiano-go/internal/debug"
	"github.com/cbegin/vpiano-go/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	var (
		backend   = flag.String("backend", string(config.BackendBeep), "audio output: beep|ebiten|none")
		sampleDir = flag.String("samples", cfg.Audio.SampleDir, "directory of <pitch>.wav|.mp3|.ogg recordings")
		soundFont = flag.String("soundfont", cfg.Audio.SoundFont, "SoundFont2 file to render the keyboard from")
		debugLog  = flag.Bool("debug", cfg.Debug, "write a debug log to ~/.config/vpiano/debug.log")
	)
	flag.Parse()
	cfg.Audio.Backend = config.Backend(*backend)
	cfg.Audio.SampleDir = *sampleDir
	cfg.Audio.SoundFont = *soundFont
	if *debugLog {
		// the terminal belongs to the UI, so logs go to the file
		if err := debug.Enable(""); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		defer debug.Disable()
	}

	start := time.Now()
	sess, err := session.Open(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer sess.Close()

	m := newModel(cfg, sess.Piano)
	m.status = fmt.Sprintf("%s, ready in %s", sess.Source, durafmt.Parse(time.Since(start)).LimitFirstN(2))

	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		fmt.Printf("Error: %v", err)
		return
	}
	if fm, ok := final.(model); ok {
		fm.saveSelections()
	}
}
