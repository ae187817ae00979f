package components

import (
	"fmt"
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/stretchr/testify/assert"

	"github.com/softswan/softswan/internal/progression"
)

func TestFilled(t *testing.T) {
	tests := []struct {
		fraction float64
		width    int
		want     int
	}{
		{0, 10, 0},
		{-0.5, 10, 0},
		{0.5, 10, 5},
		{0.99, 10, 9},
		{1, 10, 10},
		{3, 10, 10},
		{0.5, 0, 0},
		{29.0 / 100, 100, 29},
		{57.0 / 100, 100, 57},
		{58.0 / 100, 100, 58},
		{299.0 / 300, 100, 99},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Filled(tt.fraction, tt.width), "Filled(%v, %d)", tt.fraction, tt.width)
	}
}

func TestProgressBar_Plain(t *testing.T) {
	bar := ProgressBar{Fraction: 0.25, Width: 20, Plain: true}
	out := bar.View()

	assert.Equal(t, 5, strings.Count(out, "█"))
	assert.Equal(t, 15, strings.Count(out, "░"))
	assert.NotContains(t, out, "%")
}

func TestProgressBar_WidthAndPercent(t *testing.T) {
	bar := NewProgressBar("XP", 1, 40)
	out := bar.View()

	assert.Contains(t, out, "100%")
	assert.Equal(t, 40, lipgloss.Width(out))
}

func TestProgressBar_PercentMatchesPoints(t *testing.T) {
	tbl := progression.MustTable([]progression.Tier{{Name: "Bronze", XP: 0}, {Name: "Silver", XP: 100}})

	for _, pts := range []int{29, 57, 58} {
		p := tbl.Evaluate(pts)
		out := NewProgressBar("", p.Fraction(), 30).View()
		assert.Contains(t, out, fmt.Sprintf(" %d%%", pts), "points=%d", pts)
	}
}

func TestProgressBar_NarrowKeepsMinimum(t *testing.T) {
	bar := ProgressBar{Fraction: 1, Width: 1, Plain: true}
	assert.Equal(t, minBarWidth, strings.Count(bar.View(), "█"))
}

func TestTierCard(t *testing.T) {
	tbl := progression.Default()

	out := TierCard(tbl.Evaluate(150), 30, true)
	assert.Contains(t, out, "Silver 1")
	assert.Contains(t, out, "150 XP")
	assert.Contains(t, out, "50 XP to")
	assert.Contains(t, out, "Silver 2")

	out = TierCard(tbl.Evaluate(2000), 30, true)
	assert.Contains(t, out, "Cosmic Swan")
	assert.Contains(t, out, "Max level reached!")
}
