package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// RenderKeyLine packs bindings into one "key:desc" status line,
// dropping whatever doesn't fit in width (0 = no limit)
func RenderKeyLine(keys []KeyBinding, width int, keyStyle, descStyle lipgloss.Style) string {
	var out strings.Builder
	used := 0
	for i, k := range keys {
		item := keyStyle.Render(k.Key) + descStyle.Render(":"+k.Desc)
		w := lipgloss.Width(item)
		if i > 0 {
			w += 2
		}
		if width > 0 && used+w > width {
			break
		}
		if i > 0 {
			out.WriteString("  ")
		}
		out.WriteString(item)
		used += w
	}
	return out.String()
}

// Pad right-pads s to width cells, measuring styled text correctly
func Pad(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
