package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cbegin/vpiano-go/internal/melody"
	"github.com/cbegin/vpiano-go/internal/pitch"
)

// Backend selects where the piano's audio goes
type Backend string

const (
	BackendEbiten Backend = "ebiten"
	BackendBeep   Backend = "beep"
	BackendNone   Backend = "none" // silent; visual feedback only
)

// AudioConfig stores output settings
type AudioConfig struct {
	Backend    Backend `json:"backend,omitempty"`
	SampleRate int     `json:"sampleRate,omitempty"`
	LatencyMs  int     `json:"latencyMs,omitempty"`
	SampleDir  string  `json:"sampleDir,omitempty"`
	SoundFont  string  `json:"soundFont,omitempty"`
	Program    int     `json:"program,omitempty"`
	Reverb     bool    `json:"reverb"`
	Gain       float64 `json:"gain,omitempty"`
}

// PianoConfig stores playing preferences
type PianoConfig struct {
	PoolSize    int    `json:"poolSize,omitempty"`
	ReleaseMode string `json:"releaseMode,omitempty"` // "fade" or "kill"
	ShowKey     bool   `json:"showKey"`
}

// MelodyConfig stores the last melody selection
type MelodyConfig struct {
	Key   string `json:"key,omitempty"`
	Scale string `json:"scale,omitempty"`
	Notes int    `json:"notes,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Audio  AudioConfig  `json:"audio"`
	Piano  PianoConfig  `json:"piano"`
	Melody MelodyConfig `json:"melody"`
	Debug  bool         `json:"debug,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Audio: AudioConfig{
			Backend:    BackendEbiten,
			SampleRate: 44100,
			LatencyMs:  50,
			Reverb:     true,
			Gain:       0.8,
		},
		Piano: PianoConfig{
			PoolSize:    3,
			ReleaseMode: "fade",
		},
		Melody: MelodyConfig{
			Key:   "C",
			Scale: melody.Major,
			Notes: 5,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "vpiano"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads the config at path. Fields missing from the file keep
// their defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects settings the piano cannot run with.
func (c *Config) Validate() error {
	switch c.Audio.Backend {
	case BackendEbiten, BackendBeep, BackendNone:
	default:
		return fmt.Errorf("unknown audio backend %q (expected ebiten|beep|none)", c.Audio.Backend)
	}
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", c.Audio.SampleRate)
	}
	if c.Audio.SampleDir != "" && c.Audio.SoundFont != "" {
		return fmt.Errorf("sampleDir and soundFont are mutually exclusive")
	}
	if c.Piano.PoolSize < 1 {
		return fmt.Errorf("invalid pool size %d", c.Piano.PoolSize)
	}
	switch strings.ToLower(c.Piano.ReleaseMode) {
	case "fade", "kill":
	default:
		return fmt.Errorf("unknown release mode %q (expected fade|kill)", c.Piano.ReleaseMode)
	}
	if c.Melody.Key != melody.Random && !pitch.IsNoteName(c.Melody.Key) {
		return fmt.Errorf("unknown key %q", c.Melody.Key)
	}
	switch c.Melody.Scale {
	case melody.Major, melody.Minor, melody.Random:
	default:
		return fmt.Errorf("unknown scale %q (expected maj|min|random)", c.Melody.Scale)
	}
	if c.Melody.Notes < 1 || c.Melody.Notes > melody.MaxLength {
		return fmt.Errorf("melody length %d outside 1..%d", c.Melody.Notes, melody.MaxLength)
	}
	return nil
}

// KillOnRelease reports whether released keys stop at once instead of
// fading.
func (c *Config) KillOnRelease() bool {
	return strings.EqualFold(c.Piano.ReleaseMode, "kill")
}
