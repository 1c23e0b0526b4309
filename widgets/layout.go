package widgets

import (
	"math"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// VStack stacks widgets top to bottom at full width.
type VStack struct {
	Widgets []Widget
	Spacing int
}

func (v VStack) Render(width int) string {
	if len(v.Widgets) == 0 || width <= 0 {
		return ""
	}
	parts := make([]string, 0, len(v.Widgets))
	for _, w := range v.Widgets {
		parts = append(parts, w.Render(width))
	}
	return strings.Join(parts, strings.Repeat("\n", v.Spacing+1))
}

// HStack lays widgets side by side. Ratios, when given for every widget, split the
// usable width proportionally; otherwise columns are equal.
type HStack struct {
	Widgets []Widget
	Ratios  []float64
	Gap     int
}

func (h HStack) Render(width int) string {
	if len(h.Widgets) == 0 || width <= 0 {
		return ""
	}
	gapTotal := max(0, h.Gap*(len(h.Widgets)-1))
	widths := splitWidths(max(1, width-gapTotal), len(h.Widgets), h.Ratios)
	columns := make([][]string, len(h.Widgets))
	tallest := 0
	for i, w := range h.Widgets {
		columns[i] = strings.Split(w.Render(max(1, widths[i])), "\n")
		tallest = max(tallest, len(columns[i]))
	}
	out := make([]string, 0, tallest)
	gap := strings.Repeat(" ", h.Gap)
	for line := 0; line < tallest; line++ {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cell := ""
			if line < len(col) {
				cell = col[line]
			}
			cells[i] = padRight(cell, widths[i])
		}
		out = append(out, strings.TrimRight(strings.Join(cells, gap), " "))
	}
	return strings.Join(out, "\n")
}

func splitWidths(total, n int, ratios []float64) []int {
	if n <= 0 {
		return nil
	}
	out := make([]int, n)
	if len(ratios) != n {
		for i := range out {
			out[i] = total / n
		}
		for i := 0; i < total%n; i++ {
			out[i]++
		}
		return out
	}
	weights := make([]float64, n)
	sum := 0.0
	for i, r := range ratios {
		if r <= 0 {
			r = 1
		}
		weights[i] = r
		sum += r
	}
	used := 0
	for i := range out {
		out[i] = int(math.Floor(weights[i] / sum * float64(total)))
		used += out[i]
	}
	for i := 0; used < total; i = (i + 1) % n {
		out[i]++
		used++
	}
	return out
}

func padRight(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = ansi.Truncate(s, width, "")
	if w := ansi.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
