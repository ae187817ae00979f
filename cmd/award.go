package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/softswan/softswan/internal/feedback"
	"github.com/softswan/softswan/internal/llm"
	"github.com/softswan/softswan/internal/store"
	"github.com/softswan/softswan/internal/xp"
)

var awardCmd = &cobra.Command{
	Use:   "award <puzzle|tutorial|lesson> <ref>",
	Short: "Record XP for a completed activity",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		activity, err := xp.ParseActivity(args[0])
		if err != nil {
			return err
		}

		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		award, err := d.xp.Award(cmd.Context(), userFlag(cmd), activity, args[1])
		if errors.Is(err, xp.ErrAlreadyAwarded) {
			fmt.Printf("%s %q was already awarded; no XP added.\n", activity.DisplayName(), args[1])
			return nil
		}
		if err != nil {
			return err
		}
		printAward(award)
		return nil
	},
}

var answerCmd = &cobra.Command{
	Use:   "answer <answer>",
	Short: "Grade a puzzle answer and award XP when it is correct",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		puzzle, _ := cmd.Flags().GetString("puzzle")
		question, _ := cmd.Flags().GetString("question")
		expected, _ := cmd.Flags().GetString("expected")
		if strings.TrimSpace(puzzle) == "" {
			return errors.New("--puzzle is required")
		}

		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		grader := feedback.NewService(gradingProvider(cmd, d.store), feedback.DefaultConfig(), logger)
		res, err := grader.Grade(ctx, feedback.Input{
			Problem:      question,
			ExpertAnswer: expected,
			UserAnswer:   args[0],
		})
		if err != nil {
			return fmt.Errorf("grade answer: %w", err)
		}

		fmt.Println(res.Feedback)
		if !res.Correct {
			return nil
		}

		award, err := d.xp.Award(ctx, userFlag(cmd), xp.ActivityPuzzle, puzzle)
		if errors.Is(err, xp.ErrAlreadyAwarded) {
			fmt.Println("Puzzle already solved before; no XP added.")
			return nil
		}
		if err != nil {
			return err
		}
		printAward(award)
		return nil
	},
}

// gradingProvider returns the configured LLM provider, or nil to grade by
// exact match.
func gradingProvider(cmd *cobra.Command, s *store.Store) llm.Provider {
	if offline, _ := cmd.Flags().GetBool("offline"); offline {
		return nil
	}
	cfg, ok := llm.LoadConfig()
	if !ok {
		logger.Debug("no LLM provider configured, grading by exact match")
		return nil
	}
	p, err := llm.NewProvider(cmd.Context(), cfg, s.EventRepo(), logger)
	if err != nil {
		logger.Warn("LLM provider unavailable, grading by exact match", zap.Error(err))
		return nil
	}
	return p
}

func printAward(a *xp.Award) {
	fmt.Printf("+%d XP for %s → %d XP\n", a.Event.Points, xp.Activity(a.Event.Activity).DisplayName(), a.After)
	for _, t := range a.Crossed {
		fmt.Printf("Level up! Reached %s\n", t.Label())
	}
	for _, c := range a.Certificates {
		fmt.Printf("Certificate earned: %s %s (%s)\n", c.Icon, c.Tier, c.ID)
	}
	if a.Progress.AtMax() {
		fmt.Println("Max level reached!")
		return
	}
	fmt.Printf("%d XP to %s\n", a.Progress.Remaining(), a.Progress.Next.Label())
}

func init() {
	addUserFlag(awardCmd)

	addUserFlag(answerCmd)
	answerCmd.Flags().String("puzzle", "", "Puzzle ID the answer is for")
	answerCmd.Flags().String("question", "", "Puzzle question text")
	answerCmd.Flags().String("expected", "", "Expected answer")
	answerCmd.Flags().Bool("offline", false, "Grade by exact match without calling an LLM")
}
