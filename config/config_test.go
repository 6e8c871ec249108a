package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Play.Tempo != DefaultTempo {
		t.Errorf("Tempo = %d, want %d", cfg.Play.Tempo, DefaultTempo)
	}
	if cfg.Play.Mode != "pattern" {
		t.Errorf("Mode = %q, want pattern", cfg.Play.Mode)
	}
	if !cfg.Output.AutoConnect {
		t.Error("AutoConnect should default to true")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.Output.PortName = "IAC Driver Bus 1"
	cfg.Play.Tempo = 133
	cfg.Play.Mode = "song"
	if err := cfg.SaveFile(path); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got.Output.PortName != "IAC Driver Bus 1" || got.Play.Tempo != 133 || got.Play.Mode != "song" {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestLoadFileClampsAndFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "playback:\n  tempo: 999\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Play.Tempo != MaxTempo {
		t.Errorf("Tempo = %d, want %d", cfg.Play.Tempo, MaxTempo)
	}
	if cfg.NoteLength().Milliseconds() != 50 {
		t.Errorf("NoteLength = %v, want 50ms", cfg.NoteLength())
	}
	if cfg.StopTimeout().Milliseconds() != 1000 {
		t.Errorf("StopTimeout = %v, want 1s", cfg.StopTimeout())
	}
}

func TestLoadFileRejectsUnknownMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("playback:\n  mode: shuffle\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestClampTempo(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, MinTempo},
		{39, MinTempo},
		{40, 40},
		{120, 120},
		{300, 300},
		{301, MaxTempo},
	}
	for _, tt := range tests {
		if got := ClampTempo(tt.in); got != tt.want {
			t.Errorf("ClampTempo(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
