package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/canteen/internal/prefs"
)

type palette struct {
	text    lipgloss.Color
	muted   lipgloss.Color
	border  lipgloss.Color
	focus   lipgloss.Color
	accent  lipgloss.Color
	credit  lipgloss.Color
	debit   lipgloss.Color
	warning lipgloss.Color
	info    lipgloss.Color
	surface lipgloss.Color
}

// Catppuccin Latte / Mocha
var (
	lightPalette = palette{
		text:    "#4c4f69",
		muted:   "#8c8fa1",
		border:  "#bcc0cc",
		focus:   "#7287fd",
		accent:  "#1e66f5",
		credit:  "#40a02b",
		debit:   "#d20f39",
		warning: "#df8e1d",
		info:    "#179299",
		surface: "#e6e9ef",
	}
	darkPalette = palette{
		text:    "#cdd6f4",
		muted:   "#7f849c",
		border:  "#45475a",
		focus:   "#b4befe",
		accent:  "#89b4fa",
		credit:  "#a6e3a1",
		debit:   "#f38ba8",
		warning: "#f9e2af",
		info:    "#94e2d5",
		surface: "#313244",
	}
)

// Styles is the rendered form of one palette.
type Styles struct {
	Frame     lipgloss.Style
	Focused   lipgloss.Style
	Dialog    lipgloss.Style
	Title     lipgloss.Style
	Text      lipgloss.Style
	Muted     lipgloss.Style
	Big       lipgloss.Style
	Button    lipgloss.Style
	Disabled  lipgloss.Style
	Selected  lipgloss.Style
	Badge     lipgloss.Style
	Error     lipgloss.Style
	Notice    lipgloss.Style
	NavActive lipgloss.Style
	NavIdle   lipgloss.Style
	Footer    lipgloss.Style

	tones map[Tone]lipgloss.Style
}

// NewStyles builds the style set for a theme.
func NewStyles(t prefs.Theme) Styles {
	p := lightPalette
	if t == prefs.ThemeDark {
		p = darkPalette
	}
	frame := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.border).Padding(0, 1)
	return Styles{
		Frame:     frame,
		Focused:   frame.BorderForeground(p.focus),
		Dialog:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.accent).Padding(1, 2),
		Title:     lipgloss.NewStyle().Foreground(p.text).Bold(true),
		Text:      lipgloss.NewStyle().Foreground(p.text),
		Muted:     lipgloss.NewStyle().Foreground(p.muted),
		Big:       lipgloss.NewStyle().Bold(true),
		Button:    lipgloss.NewStyle().Foreground(p.accent),
		Disabled:  lipgloss.NewStyle().Foreground(p.muted).Faint(true),
		Selected:  lipgloss.NewStyle().Background(p.surface).Foreground(p.text),
		Badge:     lipgloss.NewStyle().Foreground(p.warning).Bold(true),
		Error:     lipgloss.NewStyle().Foreground(p.debit).Bold(true),
		Notice:    lipgloss.NewStyle().Foreground(p.warning).Padding(1, 2),
		NavActive: lipgloss.NewStyle().Foreground(p.accent).Bold(true).Underline(true),
		NavIdle:   lipgloss.NewStyle().Foreground(p.muted),
		Footer:    lipgloss.NewStyle().Foreground(p.muted),
		tones: map[Tone]lipgloss.Style{
			ToneNeutral: lipgloss.NewStyle().Foreground(p.text),
			ToneCredit:  lipgloss.NewStyle().Foreground(p.credit),
			ToneDebit:   lipgloss.NewStyle().Foreground(p.debit),
			ToneInfo:    lipgloss.NewStyle().Foreground(p.info),
			ToneWarning: lipgloss.NewStyle().Foreground(p.warning),
		},
	}
}

// Tone returns the color style for a tone.
func (s Styles) Tone(t Tone) lipgloss.Style {
	if st, ok := s.tones[t]; ok {
		return st
	}
	return s.tones[ToneNeutral]
}
