package xp

import (
	"fmt"
	"strings"
)

// Activity identifies what earned an XP award.
type Activity string

const (
	ActivityPuzzle   Activity = "puzzle"
	ActivityTutorial Activity = "tutorial"
	ActivityLesson   Activity = "lesson"

	// ActivityBonus marks manual adjustments made through Grant.
	ActivityBonus Activity = "bonus"
)

// AllActivities returns the awardable activities in display order.
func AllActivities() []Activity {
	return []Activity{ActivityPuzzle, ActivityTutorial, ActivityLesson}
}

// Points returns the XP an activity is worth, or 0 for bonus and unknown kinds.
func (a Activity) Points() int {
	switch a {
	case ActivityPuzzle:
		return 10
	case ActivityTutorial:
		return 30
	case ActivityLesson:
		return 50
	default:
		return 0
	}
}

// DisplayName returns a human-readable label for the activity.
func (a Activity) DisplayName() string {
	switch a {
	case ActivityPuzzle:
		return "Puzzle"
	case ActivityTutorial:
		return "Tutorial"
	case ActivityLesson:
		return "Lesson"
	case ActivityBonus:
		return "Bonus"
	default:
		return string(a)
	}
}

// ParseActivity resolves a case-insensitive activity name.
func ParseActivity(s string) (Activity, error) {
	a := Activity(strings.ToLower(strings.TrimSpace(s)))
	if a.Points() == 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownActivity, s)
	}
	return a, nil
}
