package theme

import (
	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	// Arrangement cells
	CellEmpty   string // ·· no phrase
	RowPlaying  rune   // ▶ active row
	RowQueued   rune   // ▷ pending row
	RowStopping rune   // ■ stopping at bar end

	// Phrase steps
	StepRest     string // --- no note
	StepPlayhead rune   // ▶ last played step
	Conditional  rune   // ◆ step has k/n or probability < 100
}

func New(palette *Palette) *Theme {
	if palette == nil {
		palette = Default()
	}
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			CellEmpty:   "··",
			RowPlaying:  '▶',
			RowQueued:   '▷',
			RowStopping: '■',

			StepRest:     "---",
			StepPlayhead: '▶',
			Conditional:  '◆',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0 // deep purple
	RoleSurface = 0.1 // dark purple
	RoleMuted   = 0.2 // purple-magenta
	RoleFG      = 0.4 // pink-purple (readable)
	RoleAccent  = 0.5 // vivid magenta
	RoleCursor  = 0.6 // rose pink
	RoleActive  = 0.7 // soft red
	RoleWarning = 0.8 // orange
	RoleSuccess = 1.0 // bright yellow
)

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return t.Color(RoleBG)
}

func (t *Theme) Surface() lipgloss.Color {
	return t.Color(RoleSurface)
}

func (t *Theme) FG() lipgloss.Color {
	return t.Color(RoleFG)
}

func (t *Theme) Accent() lipgloss.Color {
	return t.Color(RoleAccent)
}

func (t *Theme) Muted() lipgloss.Color {
	return t.Color(RoleMuted)
}

func (t *Theme) Active() lipgloss.Color {
	return t.Color(RoleActive)
}

func (t *Theme) Cursor() lipgloss.Color {
	return t.Color(RoleCursor)
}

func (t *Theme) Warning() lipgloss.Color {
	return t.Color(RoleWarning)
}

func (t *Theme) Success() lipgloss.Color {
	return t.Color(RoleSuccess)
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return lipgloss.Color(t.Palette.Lookup(norm).Hex())
}

// PhraseColor gives each phrase id a stable color along the palette so
// repeated phrases stand out in the arrangement
func (t *Theme) PhraseColor(id int) lipgloss.Color {
	// Skip the darkest stretch, it doesn't read on a dark terminal
	norm := 0.3 + 0.7*float64(id%16)/15
	return t.Color(norm)
}
