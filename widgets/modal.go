package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// RenderPopup draws popup, framed by frame, centered over base. Base rows outside
// the popup's footprint are kept intact so the page stays visible behind dialogs.
func RenderPopup(base, popup string, width, height int, frame lipgloss.Style) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	if frame.GetBorderStyle() == (lipgloss.Border{}) {
		frame = frame.Border(lipgloss.RoundedBorder()).Padding(1, 2)
	}
	card := frame.Render(popup)
	height = max(height, lipgloss.Height(card))
	baseCanvas := fitCanvas(base, width, height)
	overlayCanvas := fitCanvas(lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card), width, height)
	return overlayOntoBase(baseCanvas, overlayCanvas, width, height)
}

func overlayOntoBase(base, overlay string, width, height int) string {
	baseLines := splitToLines(base, height)
	overlayLines := splitToLines(overlay, height)
	out := make([]string, height)
	for i := 0; i < height; i++ {
		baseLine := padRight(baseLines[i], width)
		overlayLine := padRight(overlayLines[i], width)
		start, end, ok := overlaySegmentBounds(overlayLine, width)
		if !ok {
			out[i] = baseLine
			continue
		}
		left := ansi.Truncate(baseLine, start, "")
		segment := ansi.Truncate(dropColumns(overlayLine, start), end-start, "")
		right := dropColumns(baseLine, end)
		out[i] = padRight(left+segment+right, width)
	}
	return strings.Join(out, "\n")
}

// overlaySegmentBounds finds the visible columns of an overlay line, measured in cells.
func overlaySegmentBounds(line string, width int) (start, end int, ok bool) {
	plain := ansi.Strip(ansi.Truncate(line, width, ""))
	trimmed := strings.TrimRight(plain, " ")
	if trimmed == "" {
		return 0, 0, false
	}
	lead := len(trimmed) - len(strings.TrimLeft(trimmed, " "))
	start = lead
	end = ansi.StringWidth(trimmed)
	if start >= end {
		return 0, 0, false
	}
	return start, end, true
}

func fitCanvas(s string, width, height int) string {
	lines := splitToLines(s, height)
	for i := range lines {
		lines[i] = padRight(lines[i], width)
	}
	return strings.Join(lines, "\n")
}

func splitToLines(s string, height int) []string {
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return lines
}

func dropColumns(s string, cols int) string {
	if cols <= 0 {
		return s
	}
	truncated := ansi.Truncate(s, cols, "")
	return strings.TrimPrefix(s, truncated)
}
