package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"
)

const (
	MinTempo     = 40
	MaxTempo     = 300
	DefaultTempo = 120
)

// Config is the main configuration structure
type Config struct {
	Output  OutputConfig   `yaml:"output,omitempty"`
	Input   InputConfig    `yaml:"input,omitempty"`
	Play    PlaybackConfig `yaml:"playback,omitempty"`
	UI      UIConfig       `yaml:"ui,omitempty"`
	Debug   bool           `yaml:"debug,omitempty"`
	LogFile string         `yaml:"log_file,omitempty"`

	// ProjectsDir overrides ~/.config/go-trkr/projects
	ProjectsDir string `yaml:"projects_dir,omitempty"`
}

// OutputConfig selects the MIDI output port
type OutputConfig struct {
	PortName    string `yaml:"port,omitempty"`
	AutoConnect bool   `yaml:"auto_connect"`
}

// InputConfig selects a keyboard for step entry (optional)
type InputConfig struct {
	PortName string `yaml:"port,omitempty"`
}

// PlaybackConfig holds the scheduler defaults
type PlaybackConfig struct {
	Tempo         int    `yaml:"tempo,omitempty"`
	Mode          string `yaml:"mode,omitempty"` // "pattern" or "song"
	NoteLengthMS  int    `yaml:"note_length_ms,omitempty"`
	StopTimeoutMS int    `yaml:"stop_timeout_ms,omitempty"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	Palette     string `yaml:"palette,omitempty"` // GIMP .gpl file, built-in if empty
	LastProject string `yaml:"last_project,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			AutoConnect: true,
		},
		Play: PlaybackConfig{
			Tempo:         DefaultTempo,
			Mode:          "pattern",
			NoteLengthMS:  50,
			StopTimeoutMS: 1000,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-trkr"), nil
}

// ConfigPath returns the full path to config.yaml
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config from the default path, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads the config at path. A missing file yields defaults.
// Fields absent from the file keep their default values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the config to the default path
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config to path, creating the directory if needed
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate clamps numeric fields into range and rejects unknown modes
func (c *Config) Validate() error {
	c.Play.Tempo = ClampTempo(c.Play.Tempo)
	switch c.Play.Mode {
	case "":
		c.Play.Mode = "pattern"
	case "pattern", "song":
	default:
		return fmt.Errorf("invalid playback mode %q (want pattern or song)", c.Play.Mode)
	}
	if c.Play.NoteLengthMS <= 0 {
		c.Play.NoteLengthMS = 50
	}
	if c.Play.StopTimeoutMS <= 0 {
		c.Play.StopTimeoutMS = 1000
	}
	return nil
}

// NoteLength returns the note-off delay
func (c *Config) NoteLength() time.Duration {
	return time.Duration(c.Play.NoteLengthMS) * time.Millisecond
}

// StopTimeout returns how long an immediate stop waits for the clock loop
func (c *Config) StopTimeout() time.Duration {
	return time.Duration(c.Play.StopTimeoutMS) * time.Millisecond
}

// ProjectsPath returns where projects are stored
func (c *Config) ProjectsPath() (string, error) {
	if c.ProjectsDir != "" {
		return c.ProjectsDir, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "projects"), nil
}

// ClampTempo clamps bpm to [MinTempo, MaxTempo]
func ClampTempo(bpm int) int {
	if bpm < MinTempo {
		return MinTempo
	}
	if bpm > MaxTempo {
		return MaxTempo
	}
	return bpm
}
