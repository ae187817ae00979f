package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/softswan/softswan/internal/progression"
	"github.com/softswan/softswan/internal/ui/components"
)

var tierCmd = &cobra.Command{
	Use:   "tier <points>",
	Short: "Evaluate an XP total against the tier table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		points, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid points %q: %w", args[0], err)
		}

		table, err := loadTable(cmd)
		if err != nil {
			return err
		}

		plain, _ := cmd.Flags().GetBool("plain")
		fmt.Println(components.TierCard(table.Evaluate(points), 40, plain))
		return nil
	},
}

var tiersCmd = &cobra.Command{
	Use:   "tiers",
	Short: "List the tier table",
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadTable(cmd)
		if err != nil {
			return err
		}
		printTiers(table)
		return nil
	},
}

func printTiers(table *progression.Table) {
	fmt.Printf("%-4s  %-16s  %6s  %s\n", "", "Tier", "XP", "Certificate")
	fmt.Println(strings.Repeat("─", 40))
	for _, t := range table.Tiers() {
		cert := ""
		if t.Major {
			cert = "yes"
		}
		fmt.Printf("%-4s  %-16s  %6d  %s\n", t.Icon, t.Name, t.XP, cert)
	}
}

func init() {
	tierCmd.Flags().Bool("plain", false, "Draw the progress bar without colors")
}
