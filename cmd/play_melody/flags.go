package main

import (
	"flag"
	"strings"

	"github.com/cbegin/vpiano-go/internal/config"
)

// cliFlags holds the command line. Settings that also live in the config
// file only override it when given explicitly.
type cliFlags struct {
	configPath string
	backend    string
	sampleDir  string
	soundFont  string
	program    int
	key        string
	scale      string
	notes      int
	release    string
	debug      bool

	playScale bool
	reveal    bool
	melody    string
	save      bool
}

func newFlags(fs *flag.FlagSet) *cliFlags {
	def := config.DefaultConfig()
	f := &cliFlags{}
	fs.StringVar(&f.configPath, "config", "", "path to a config file (default ~/.config/vpiano/config.json)")
	fs.StringVar(&f.backend, "backend", string(def.Audio.Backend), "audio output: ebiten|beep|none")
	fs.StringVar(&f.sampleDir, "samples", def.Audio.SampleDir, "directory of <pitch>.wav|.mp3|.ogg recordings")
	fs.StringVar(&f.soundFont, "soundfont", def.Audio.SoundFont, "SoundFont2 file to render the keyboard from")
	fs.IntVar(&f.program, "program", def.Audio.Program, "SoundFont program (0 = acoustic grand)")
	fs.StringVar(&f.key, "key", def.Melody.Key, "tonic note name, or random")
	fs.StringVar(&f.scale, "scale", def.Melody.Scale, "maj|min|random")
	fs.IntVar(&f.notes, "notes", def.Melody.Notes, "melody length (1..6)")
	fs.StringVar(&f.release, "release", def.Piano.ReleaseMode, "release mode: fade|kill")
	fs.BoolVar(&f.debug, "debug", def.Debug, "write a debug log to ~/.config/vpiano/debug.log")
	fs.BoolVar(&f.playScale, "play-scale", false, "play the scale of the key after the melody")
	fs.BoolVar(&f.reveal, "show", true, "print the melody and key once played")
	fs.StringVar(&f.melody, "melody", "", "space separated pitches to play instead of generating, e.g. \"C3 E3 G3\"")
	fs.BoolVar(&f.save, "save", false, "store the audio and melody flags in the config file")
	return f
}

// loadConfig reads the config named by -config, or the default one.
func (f *cliFlags) loadConfig() (*config.Config, error) {
	if f.configPath != "" {
		return config.LoadFile(f.configPath)
	}
	return config.Load()
}

// apply copies the flags that were set on fs into cfg.
func (f *cliFlags) apply(fs *flag.FlagSet, cfg *config.Config) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "backend":
			cfg.Audio.Backend = config.Backend(strings.ToLower(f.backend))
		case "samples":
			cfg.Audio.SampleDir = f.sampleDir
		case "soundfont":
			cfg.Audio.SoundFont = f.soundFont
		case "program":
			cfg.Audio.Program = f.program
		case "key":
			cfg.Melody.Key = f.key
		case "scale":
			cfg.Melody.Scale = f.scale
		case "notes":
			cfg.Melody.Notes = f.notes
		case "release":
			cfg.Piano.ReleaseMode = f.release
		case "debug":
			cfg.Debug = f.debug
		}
	})
}
