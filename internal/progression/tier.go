package progression

import "slices"

// Tier is a named achievement level gated by a minimum cumulative XP total.
type Tier struct {
	Name string `yaml:"name"`
	XP   int    `yaml:"xp"`
	Icon string `yaml:"icon"`

	// Major tiers earn a certificate the first time they are reached.
	Major bool `yaml:"major"`
}

// Label returns the icon and name joined for display.
func (t Tier) Label() string {
	if t.Icon == "" {
		return t.Name
	}
	return t.Icon + " " + t.Name
}

// Table is an immutable tier table sorted by strictly increasing threshold,
// starting at 0. A Table is safe for concurrent use.
type Table struct {
	tiers  []Tier
	byName map[string]int
}

// NewTable validates tiers and builds a Table from a copy of them.
// All invariant violations are reported together.
func NewTable(tiers []Tier) (*Table, error) {
	if err := validateTiers(tiers); err != nil {
		return nil, err
	}

	t := &Table{
		tiers:  slices.Clone(tiers),
		byName: make(map[string]int, len(tiers)),
	}
	for i, tier := range t.tiers {
		t.byName[tier.Name] = i
	}
	return t, nil
}

// MustTable is like NewTable but panics on an invalid table. Intended for
// package-level tables built at init.
func MustTable(tiers []Tier) *Table {
	t, err := NewTable(tiers)
	if err != nil {
		panic(err)
	}
	return t
}

// Tiers returns a copy of the tiers in ascending threshold order.
func (t *Table) Tiers() []Tier {
	return slices.Clone(t.tiers)
}

// Len returns the number of tiers.
func (t *Table) Len() int {
	return len(t.tiers)
}

// First returns the entry tier (threshold 0).
func (t *Table) First() Tier {
	return t.tiers[0]
}

// Last returns the highest tier.
func (t *Table) Last() Tier {
	return t.tiers[len(t.tiers)-1]
}

// Tier looks up a tier by its exact name.
func (t *Table) Tier(name string) (Tier, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Tier{}, false
	}
	return t.tiers[i], true
}

// Majors returns the major tiers in ascending order.
func (t *Table) Majors() []Tier {
	var out []Tier
	for _, tier := range t.tiers {
		if tier.Major {
			out = append(out, tier)
		}
	}
	return out
}
