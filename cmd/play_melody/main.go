package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/hako/durafmt"

	"github.com/cbegin/vpiano-go"
	"github.com/cbegin/vpiano-go/internal/config"
	"github.com/cbegin/vpiano-go/internal/debug"
	"github.com/cbegin/vpiano-go/internal/session"
)

var shortUnits, _ = durafmt.DefaultUnitsCoder.Decode("y:yrs,wk:wks,d:d,h:h,m:m,s:s,ms:ms,us:us")

func main() {
	fl := newFlags(flag.CommandLine)
	flag.Parse()

	cfg, err := fl.loadConfig()
	if err != nil {
		log.Fatal(err)
	}
	fl.apply(flag.CommandLine, cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	if cfg.Debug {
		if err := debug.Enable(""); err != nil {
			log.Printf("debug log: %v", err)
		}
		defer debug.Disable()
	}
	if fl.save {
		if err := saveConfig(cfg, fl.configPath); err != nil {
			log.Fatal(err)
		}
	}

	start := time.Now()
	sess, err := session.Open(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer sess.Close()
	fmt.Printf("samples: %s (ready in %s)\n", sess.Source, durafmt.Parse(time.Since(start)).LimitFirstN(2).Format(shortUnits))

	pl := sess.Piano
	ch := pl.Watch()
	go printEvents(ch)

	var m vpiano.Melody
	if strings.TrimSpace(fl.melody) != "" {
		pl.PlayMelody(strings.Fields(fl.melody))
	} else {
		m, err = pl.GenerateMelody(cfg.Melody.Key, cfg.Melody.Scale, cfg.Melody.Notes)
		if err != nil {
			log.Fatal(err)
		}
	}
	played := time.Now()
	waitIdle(pl)
	if fl.reveal && !m.Empty() {
		pl.ShowMelody()
	}
	if fl.playScale {
		pl.PlayScale()
		waitIdle(pl)
	}
	fmt.Printf("playback completed in %s\n", durafmt.Parse(time.Since(played)).LimitFirstN(2).Format(shortUnits))
}

func printEvents(ch <-chan vpiano.Event) {
	for ev := range ch {
		switch ev.Kind {
		case vpiano.EventHighlight:
			fmt.Printf("  %s\n", ev.Pitch)
		case vpiano.EventMelodyText:
			if ev.Text != "" {
				fmt.Printf("melody: %s\n", ev.Text)
			}
		case vpiano.EventKeyText:
			fmt.Printf("key: %s\n", ev.Text)
		}
	}
}

// waitIdle blocks until the melody has finished and every note has died
// away.
func waitIdle(pl *vpiano.Piano) {
	// the first note is triggered synchronously, so Busy is already true
	for pl.Busy() {
		time.Sleep(50 * time.Millisecond)
	}
	// let the output drain
	time.Sleep(100 * time.Millisecond)
}

func saveConfig(cfg *config.Config, path string) error {
	if path != "" {
		return cfg.SaveFile(path)
	}
	return cfg.Save()
}
