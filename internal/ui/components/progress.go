package components

import (
	"fmt"
	"math"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/softswan/softswan/internal/ui/theme"
)

// minBarWidth keeps the bar visible on very narrow terminals.
const minBarWidth = 4

// ProgressBar renders a fraction in [0, 1] as a horizontal bar.
type ProgressBar struct {
	Label       string
	Fraction    float64
	ShowPercent bool
	Width       int

	// Plain renders with '█' and '░' instead of background colors, for
	// output that is not a styled terminal.
	Plain bool
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, fraction float64, width int) ProgressBar {
	return ProgressBar{
		Label:       label,
		Fraction:    fraction,
		ShowPercent: true,
		Width:       width,
	}
}

// Filled returns how many of barWidth cells are filled.
func Filled(fraction float64, barWidth int) int {
	switch {
	case fraction <= 0 || barWidth <= 0:
		return 0
	case fraction >= 1:
		return barWidth
	}
	// The epsilon absorbs float error such as 0.29*100 = 28.999...
	return int(math.Floor(float64(barWidth)*fraction + 1e-9))
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var b strings.Builder

	if p.Label != "" {
		b.WriteString(theme.Body.Render(p.Label))
		b.WriteString("  ")
	}

	percentWidth := 0
	if p.ShowPercent {
		percentWidth = 6 // "  100%"
	}
	barWidth := p.Width - lipgloss.Width(b.String()) - percentWidth
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}

	filled := Filled(p.Fraction, barWidth)
	empty := barWidth - filled

	if p.Plain {
		b.WriteString(strings.Repeat("█", filled))
		b.WriteString(strings.Repeat("░", empty))
	} else {
		b.WriteString(theme.ProgressFilled.Render(strings.Repeat(" ", filled)))
		b.WriteString(theme.ProgressEmpty.Render(strings.Repeat(" ", empty)))
	}

	if p.ShowPercent {
		pct := Filled(p.Fraction, 100)
		b.WriteString(theme.Dim.Render(fmt.Sprintf("  %d%%", pct)))
	}

	return b.String()
}
