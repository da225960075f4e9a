package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette(Colors{
	Accent: "#FF4500",
	OK:     "#04B575",
	Err:    "#FF0000",
	Warn:   "#FFA500",
	Muted:  "#626262",
})

// Colors holds the hex values a [Palette] is built from.
type Colors struct {
	Accent string
	OK     string
	Err    string
	Warn   string
	Muted  string
}

// Palette is the stylesheet shared by every view.
type Palette struct {
	title   lipgloss.Style
	playing lipgloss.Style
	err     lipgloss.Style
	warn    lipgloss.Style
	muted   lipgloss.Style
	author  lipgloss.Style
	bar     lipgloss.Style
}

func NewPalette(c Colors) *Palette {
	return &Palette{
		title:   NewBold(c.Accent).MarginBottom(1),
		playing: NewBold(c.OK),
		err:     NewBold(c.Err),
		warn:    NewStyle(c.Warn),
		muted:   NewEm(c.Muted),
		author:  NewBold(c.Accent),
		bar:     NewStyle(c.OK).BorderStyle(lipgloss.NormalBorder()).BorderTop(true).BorderForeground(lipgloss.Color(c.Muted)),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// indent prefixes every line of s with depth levels of two-space indentation.
func indent(s string, depth int) string {
	pad := strings.Repeat("  ", depth)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = pad + l
	}
	return strings.Join(lines, "\n")
}
