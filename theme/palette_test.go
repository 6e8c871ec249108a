package theme

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const samplePalette = `GIMP Palette
Name: Mono
Columns: 2
#
  0   0   0	Black
255 255 255	White
300 0 0 out of range
`

func TestParseGPL(t *testing.T) {
	p, err := ParseGPL(strings.NewReader(samplePalette))
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Mono" {
		t.Errorf("name = %q", p.Name)
	}
	if len(p.Colors) != 2 {
		t.Fatalf("colors = %v, want 2", p.Colors)
	}
	if got := p.Lookup(0.5); got != (RGB{127, 127, 127}) {
		t.Errorf("Lookup(0.5) = %v", got)
	}
	if got := p.Lookup(2); got != (RGB{255, 255, 255}) {
		t.Errorf("Lookup(2) = %v", got)
	}
}

func TestParseGPLEmpty(t *testing.T) {
	if _, err := ParseGPL(strings.NewReader("GIMP Palette\n# nothing\n")); err == nil {
		t.Error("palette without colors should fail")
	}
}

func TestLoadFallsBack(t *testing.T) {
	if p := Load(""); p.Name != "plasma" {
		t.Errorf("Load(\"\") = %s", p.Name)
	}
	if p := Load(filepath.Join(t.TempDir(), "missing.gpl")); p.Name != "plasma" {
		t.Errorf("missing file = %s", p.Name)
	}

	path := filepath.Join(t.TempDir(), "mono.gpl")
	if err := os.WriteFile(path, []byte(samplePalette), 0644); err != nil {
		t.Fatal(err)
	}
	if p := Load(path); p.Name != "Mono" {
		t.Errorf("Load(%s) = %s", path, p.Name)
	}
}

func TestRGBHex(t *testing.T) {
	if got := (RGB{255, 8, 171}).Hex(); got != "#ff08ab" {
		t.Errorf("Hex() = %s", got)
	}
}
