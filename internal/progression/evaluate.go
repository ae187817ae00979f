package progression

import (
	"errors"
	"fmt"
)

// ErrNegativePoints is returned by Check for totals below zero.
var ErrNegativePoints = errors.New("points must be >= 0")

// Progress is the evaluation of a point total against a table. It is derived
// on every query and never stored.
type Progress struct {
	// Points is the evaluated total, after clamping negatives to 0.
	Points  int
	Current Tier
	// Next is nil once the highest tier has been reached.
	Next *Tier
}

// Evaluate maps a point total to its current tier and the next reachable one.
// Thresholds are inclusive. Negative totals are clamped to 0.
func (t *Table) Evaluate(points int) Progress {
	if points < 0 {
		points = 0
	}

	current := t.tiers[0]
	var next *Tier
	for i := range t.tiers {
		if points >= t.tiers[i].XP {
			current = t.tiers[i]
			continue
		}
		n := t.tiers[i]
		next = &n
		break
	}

	return Progress{Points: points, Current: current, Next: next}
}

// Check reports whether points is a valid total, for callers that reject
// negative input instead of relying on Evaluate's clamping.
func (t *Table) Check(points int) error {
	if points < 0 {
		return fmt.Errorf("%w: got %d", ErrNegativePoints, points)
	}
	return nil
}

// Crossed returns the tiers newly reached when a total moves from before to
// after, in ascending order. Nothing is crossed when after <= before.
func (t *Table) Crossed(before, after int) []Tier {
	if before < 0 {
		before = 0
	}
	if after <= before {
		return nil
	}

	var out []Tier
	for _, tier := range t.tiers {
		if tier.XP > before && tier.XP <= after {
			out = append(out, tier)
		}
	}
	return out
}

// AtMax reports whether the highest tier has been reached.
func (p Progress) AtMax() bool {
	return p.Next == nil
}

// Remaining returns the points still needed to reach the next tier, or 0 at
// the highest tier.
func (p Progress) Remaining() int {
	if p.Next == nil {
		return 0
	}
	return p.Next.XP - p.Points
}

// Fraction returns how far the total is between the current and next tier.
func (p Progress) Fraction() float64 {
	return Fraction(p.Current, p.Next, p.Points)
}

// Percent returns Fraction as a whole percentage, rounded down. It is
// computed on integers so 29 of 100 points reads 29%.
func (p Progress) Percent() int {
	if p.Next == nil {
		return 100
	}
	span := p.Next.XP - p.Current.XP
	if span <= 0 {
		return 100
	}
	pct := (p.Points - p.Current.XP) * 100 / span
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}

// Fraction computes the progress from current toward next for a total,
// clamped to [0, 1]. A nil next means the table is complete and yields 1.
func Fraction(current Tier, next *Tier, points int) float64 {
	if next == nil {
		return 1
	}
	span := next.XP - current.XP
	if span <= 0 {
		return 1
	}
	f := float64(points-current.XP) / float64(span)
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
