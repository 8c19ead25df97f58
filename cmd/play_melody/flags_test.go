package main

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/cbegin/vpiano-go/internal/config"
)

func parse(t *testing.T, args ...string) (*cliFlags, *flag.FlagSet) {
	t.Helper()
	fs := flag.NewFlagSet("play_melody", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	f := newFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	return f, fs
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConfigFileSurvivesUnsetFlags(t *testing.T) {
	path := writeConfig(t, `{"audio":{"backend":"none"},"piano":{"releaseMode":"kill"},"melody":{"key":"D","scale":"min","notes":3}}`)
	f, fs := parse(t, "-config", path)
	cfg, err := f.loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	f.apply(fs, cfg)

	if cfg.Audio.Backend != config.BackendNone {
		t.Fatalf("backend = %q, want none", cfg.Audio.Backend)
	}
	if cfg.Melody.Key != "D" || cfg.Melody.Scale != "min" || cfg.Melody.Notes != 3 {
		t.Fatalf("melody = %+v, want D min 3", cfg.Melody)
	}
	if cfg.Piano.ReleaseMode != "kill" {
		t.Fatalf("release = %q, want kill", cfg.Piano.ReleaseMode)
	}
}

func TestExplicitFlagsOverrideConfigFile(t *testing.T) {
	path := writeConfig(t, `{"audio":{"backend":"none"},"melody":{"key":"D","scale":"min","notes":3}}`)
	f, fs := parse(t, "-config", path, "-backend", "BEEP", "-key", "F", "-notes", "5", "-debug")
	cfg, err := f.loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	f.apply(fs, cfg)

	if cfg.Audio.Backend != config.BackendBeep {
		t.Fatalf("backend = %q, want beep", cfg.Audio.Backend)
	}
	if cfg.Melody.Key != "F" || cfg.Melody.Notes != 5 {
		t.Fatalf("melody = %+v, want key F with 5 notes", cfg.Melody)
	}
	if cfg.Melody.Scale != "min" {
		t.Fatalf("scale = %q, want min from the file", cfg.Melody.Scale)
	}
	if !cfg.Debug {
		t.Fatalf("debug flag not applied")
	}
}

func TestMissingConfigFileUsesDefaults(t *testing.T) {
	f, fs := parse(t, "-config", filepath.Join(t.TempDir(), "absent.json"))
	cfg, err := f.loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	f.apply(fs, cfg)
	def := config.DefaultConfig()
	if cfg.Audio.Backend != def.Audio.Backend || cfg.Melody != def.Melody {
		t.Fatalf("cfg = %+v, want defaults", cfg)
	}
}
