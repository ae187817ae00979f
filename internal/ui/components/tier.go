package components

import (
	"fmt"
	"strings"

	"github.com/softswan/softswan/internal/progression"
	"github.com/softswan/softswan/internal/ui/theme"
)

// TierCard renders a learner's current tier, points and distance to the
// next tier.
func TierCard(p progression.Progress, width int, plain bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n",
		theme.TierName.Render(p.Current.Label()),
		theme.Points.Render(fmt.Sprintf("%d XP", p.Points)),
	)

	if p.AtMax() {
		b.WriteString(theme.Celebrate.Render("Max level reached!"))
		b.WriteString("\n")
	} else {
		fmt.Fprintf(&b, "%s %s\n",
			theme.Dim.Render(fmt.Sprintf("%d XP to", p.Remaining())),
			theme.Body.Render(p.Next.Label()),
		)
	}

	bar := NewProgressBar("", p.Fraction(), width)
	bar.Plain = plain
	b.WriteString(bar.View())

	return b.String()
}
