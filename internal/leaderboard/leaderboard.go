// Package leaderboard ranks learners by XP and labels them with their tier.
package leaderboard

import (
	"sort"

	"github.com/softswan/softswan/internal/progression"
)

// Entry is one learner's total.
type Entry struct {
	User   string
	Points int
}

// Row is a ranked leaderboard line.
type Row struct {
	Rank     int
	User     string
	Points   int
	Tier     string
	TierIcon string
}

// Rank orders entries by points descending, breaking ties by user name, and
// assigns sequential 1-based ranks. The input slice is not modified.
func Rank(table *progression.Table, entries []Entry) []Row {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Points != sorted[j].Points {
			return sorted[i].Points > sorted[j].Points
		}
		return sorted[i].User < sorted[j].User
	})

	rows := make([]Row, len(sorted))
	for i, e := range sorted {
		tier := table.Evaluate(e.Points).Current
		rows[i] = Row{
			Rank:     i + 1,
			User:     e.User,
			Points:   e.Points,
			Tier:     tier.Name,
			TierIcon: tier.Icon,
		}
	}
	return rows
}

// Top returns at most n rows. n <= 0 returns all rows.
func Top(rows []Row, n int) []Row {
	if n <= 0 || n >= len(rows) {
		return rows
	}
	return rows[:n]
}

// Find returns the row for user, if ranked.
func Find(rows []Row, user string) (Row, bool) {
	for _, r := range rows {
		if r.User == user {
			return r, true
		}
	}
	return Row{}, false
}
