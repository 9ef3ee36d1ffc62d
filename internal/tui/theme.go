package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/fastreckless/frb/internal/prefs"
)

type palette struct {
	text    lipgloss.Color
	muted   lipgloss.Color
	border  lipgloss.Color
	accent  lipgloss.Color
	success lipgloss.Color
	errorFg lipgloss.Color
	errorBg lipgloss.Color
	surface lipgloss.Color
}

var (
	darkPalette = palette{
		text:    "#cdd6f4",
		muted:   "#a6adc8",
		border:  "#585b70",
		accent:  "#89b4fa",
		success: "#a6e3a1",
		errorFg: "#f38ba8",
		errorBg: "#3b1f2b",
		surface: "#313244",
	}
	lightPalette = palette{
		text:    "#4c4f69",
		muted:   "#6c6f85",
		border:  "#9ca0b0",
		accent:  "#1e66f5",
		success: "#40a02b",
		errorFg: "#d20f39",
		errorBg: "#fde2e7",
		surface: "#e6e9ef",
	}
)

type styles struct {
	app       lipgloss.Style
	title     lipgloss.Style
	subtitle  lipgloss.Style
	heading   lipgloss.Style
	key       lipgloss.Style
	help      lipgloss.Style
	active    lipgloss.Style
	disabled  lipgloss.Style
	errorBox  lipgloss.Style
	panel     lipgloss.Style
	field     lipgloss.Style
	focused   lipgloss.Style
	muted     lipgloss.Style
	spinner   lipgloss.Style
	selection lipgloss.Style
	table     table.Styles
}

func newStyles(theme prefs.Theme) styles {
	p := darkPalette
	if theme == prefs.ThemeLight {
		p = lightPalette
	}

	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(p.border).
		BorderBottom(true).
		Foreground(p.accent).
		Bold(true)
	ts.Cell = ts.Cell.Foreground(p.text)
	ts.Selected = lipgloss.NewStyle().Foreground(p.text)

	return styles{
		app:      lipgloss.NewStyle().Foreground(p.text).Padding(0, 1),
		title:    lipgloss.NewStyle().Foreground(p.accent).Bold(true),
		subtitle: lipgloss.NewStyle().Foreground(p.muted),
		heading:  lipgloss.NewStyle().Foreground(p.text).Bold(true).Underline(true),
		key:      lipgloss.NewStyle().Foreground(p.accent).Bold(true),
		help:     lipgloss.NewStyle().Foreground(p.muted),
		active:   lipgloss.NewStyle().Foreground(p.accent).Background(p.surface).Bold(true),
		disabled: lipgloss.NewStyle().Foreground(p.border),
		errorBox: lipgloss.NewStyle().
			Foreground(p.errorFg).
			Background(p.errorBg).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.errorFg).
			Padding(0, 1),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.border).
			Padding(0, 1),
		field:     lipgloss.NewStyle().Foreground(p.text),
		focused:   lipgloss.NewStyle().Foreground(p.accent).Bold(true),
		muted:     lipgloss.NewStyle().Foreground(p.muted),
		spinner:   lipgloss.NewStyle().Foreground(p.success),
		selection: lipgloss.NewStyle().Foreground(p.text).Background(p.surface).Bold(true),
		table:     ts,
	}
}
