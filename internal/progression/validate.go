package progression

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyTable is returned when a table has no tiers.
var ErrEmptyTable = errors.New("tier table is empty")

// validateTiers checks every table invariant and returns a combined error
// describing all problems found, or nil if the table is valid.
func validateTiers(tiers []Tier) error {
	if len(tiers) == 0 {
		return ErrEmptyTable
	}

	var errs []string

	if tiers[0].XP != 0 {
		errs = append(errs, fmt.Sprintf("first tier %q must have threshold 0, got %d", tiers[0].Name, tiers[0].XP))
	}

	seen := make(map[string]bool, len(tiers))
	for i, t := range tiers {
		prefix := fmt.Sprintf("tier %d", i)
		if strings.TrimSpace(t.Name) == "" {
			errs = append(errs, prefix+": name is empty")
		} else if seen[t.Name] {
			errs = append(errs, fmt.Sprintf("%s: duplicate name %q", prefix, t.Name))
		}
		seen[t.Name] = true

		if t.XP < 0 {
			errs = append(errs, fmt.Sprintf("%s (%q): threshold must be >= 0, got %d", prefix, t.Name, t.XP))
		}
		if i > 0 && t.XP <= tiers[i-1].XP {
			errs = append(errs, fmt.Sprintf("%s (%q): threshold %d must be greater than %d of %q",
				prefix, t.Name, t.XP, tiers[i-1].XP, tiers[i-1].Name))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("tier table validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
