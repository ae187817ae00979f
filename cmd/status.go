package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/softswan/softswan/internal/leaderboard"
	"github.com/softswan/softswan/internal/ui/components"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a learner's XP, tier and progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		user := userFlag(cmd)
		p, err := d.xp.Progress(cmd.Context(), user)
		if err != nil {
			return err
		}

		plain, _ := cmd.Flags().GetBool("plain")
		fmt.Println(user)
		fmt.Println(components.TierCard(p, 40, plain))
		return nil
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Rank learners by XP",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("limit")

		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		totals, err := d.store.XPRepo().Totals(cmd.Context())
		if err != nil {
			return fmt.Errorf("query totals: %w", err)
		}
		if len(totals) == 0 {
			fmt.Println("No XP recorded yet.")
			return nil
		}

		entries := make([]leaderboard.Entry, len(totals))
		for i, t := range totals {
			entries[i] = leaderboard.Entry{User: t.User, Points: t.Points}
		}
		rows := leaderboard.Top(leaderboard.Rank(d.table, entries), n)

		fmt.Printf("%4s  %-20s  %7s  %s\n", "#", "Learner", "XP", "Tier")
		fmt.Println(strings.Repeat("─", 52))
		for _, r := range rows {
			fmt.Printf("%4d  %-20s  %7d  %s %s\n", r.Rank, truncate(r.User, 20), r.Points, r.TierIcon, r.Tier)
		}
		return nil
	},
}

var certificatesCmd = &cobra.Command{
	Use:   "certificates",
	Short: "List a learner's tier certificates",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		user := userFlag(cmd)
		if strings.TrimSpace(user) == "" {
			return errors.New("--user is required")
		}
		certs, err := d.xp.Certificates(cmd.Context(), user)
		if err != nil {
			return err
		}
		if len(certs) == 0 {
			fmt.Printf("%s has no certificates yet.\n", user)
			return nil
		}

		fmt.Printf("%-4s  %-16s  %6s  %-10s  %s\n", "", "Tier", "XP", "Awarded", "ID")
		fmt.Println(strings.Repeat("─", 76))
		for _, c := range certs {
			fmt.Printf("%-4s  %-16s  %6d  %-10s  %s\n",
				c.Icon, c.Tier, c.XP, c.AwardedAt.Local().Format("2006-01-02"), c.ID)
		}
		return nil
	},
}

func init() {
	addUserFlag(statusCmd)
	statusCmd.Flags().Bool("plain", false, "Draw the progress bar without colors")

	leaderboardCmd.Flags().IntP("limit", "n", 10, "Number of learners to show (0 for all)")

	addUserFlag(certificatesCmd)
}
