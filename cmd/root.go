package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/softswan/softswan/internal/progression"
	"github.com/softswan/softswan/internal/store"
)

// logger is built by the root command before any subcommand runs.
var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:          "softswan",
	Short:        "Track learner XP and tier progression",
	Long:         "SoftSwan records XP for puzzles, tutorials and lessons and shows where each learner stands on the tier ladder.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		l, err := newLogger(verbose)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides SOFTSWAN_DB env var)")
	rootCmd.PersistentFlags().String("tiers", "", "YAML tier table overriding the built-in one")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(tierCmd)
	rootCmd.AddCommand(tiersCmd)
	rootCmd.AddCommand(awardCmd)
	rootCmd.AddCommand(answerCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(certificatesCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the production JSON logger on stderr. Only warnings are
// shown unless verbose is set.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then SOFTSWAN_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// loadTable returns the --tiers table, or the built-in one.
func loadTable(cmd *cobra.Command) (*progression.Table, error) {
	path, _ := cmd.Flags().GetString("tiers")
	if path == "" {
		return progression.Default(), nil
	}
	tbl, err := progression.LoadTableFile(path)
	if err != nil {
		return nil, fmt.Errorf("load tier table: %w", err)
	}
	logger.Debug("loaded tier table", zap.String("path", path), zap.Int("tiers", tbl.Len()))
	return tbl, nil
}
