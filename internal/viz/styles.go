package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ProgressBar renders filled/total as a bar of width cells.
func ProgressBar(filled, total, width int, t Theme) string {
	if total <= 0 {
		return strings.Repeat("░", width)
	}
	n := filled * width / total
	if n > width {
		n = width
	}
	if n < 0 {
		n = 0
	}
	bar := strings.Repeat("█", n) + strings.Repeat("░", width-n)

	color := t.Error
	switch {
	case filled >= total:
		color = t.Success
	case filled*2 >= total:
		color = t.Warning
	}
	return lipgloss.NewStyle().Foreground(color).Render(bar)
}

// Sparkline renders the last width values using block characters.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int((v - lo) * float64(len(chars)-1) / rng)
		b.WriteRune(chars[min(max(idx, 0), len(chars)-1)])
	}
	return b.String()
}
