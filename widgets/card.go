package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Widget renders itself into a column of the given width. Height follows content.
type Widget interface {
	Render(width int) string
}

// Text is a pre-rendered block.
type Text string

func (t Text) Render(width int) string { return string(t) }

// Card is a bordered panel with a title line and an optional badge.
type Card struct {
	Title   string
	Badge   string
	Content string
	Frame   lipgloss.Style // border, padding and colors; zero value gets a rounded border
	Header  lipgloss.Style
	Align   lipgloss.Position // lipgloss.Right approximates RTL text flow
}

func (c Card) Render(width int) string {
	if width <= 0 {
		return ""
	}
	frame := c.Frame
	if frame.GetBorderStyle() == (lipgloss.Border{}) {
		frame = frame.Border(lipgloss.RoundedBorder()).Padding(0, 1)
	}
	inner := max(1, width-frame.GetHorizontalFrameSize())
	header := c.Title
	if c.Badge != "" {
		header += "  " + c.Badge
	}
	lines := []string{c.Header.Render(header)}
	if c.Content != "" {
		lines = append(lines, c.Content)
	}
	body := lipgloss.NewStyle().Width(inner).Align(c.Align).Render(strings.Join(lines, "\n"))
	return frame.Render(body)
}
