package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/softswan/softswan/internal/llm"
	"github.com/softswan/softswan/internal/store"
)

// gradingPurpose is the purpose tag the answer grader records its calls under.
const gradingPurpose = "feedback"

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect LLM grading requests",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent grading requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		failedOnly, _ := cmd.Flags().GetBool("failed")

		return withEventRepo(cmd, func(repo store.EventRepo) error {
			events, err := repo.QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit})
			if err != nil {
				return fmt.Errorf("query events: %w", err)
			}

			var shown []store.LLMRequestEventRecord
			for _, e := range events {
				if purpose != "" && e.Purpose != purpose {
					continue
				}
				if failedOnly && e.Success {
					continue
				}
				shown = append(shown, e)
			}
			if len(shown) == 0 {
				fmt.Println("No grading requests recorded.")
				return nil
			}

			fmt.Printf("%-5s  %-16s  %-34s  %11s  %7s  %s\n",
				"ID", "When", "Provider/Model", "Tokens", "Ms", "Result")
			fmt.Println(strings.Repeat("─", 96))
			for _, e := range shown {
				fmt.Printf("%-5d  %-16s  %-34s  %5d/%-5d  %7d  %s\n",
					e.ID,
					e.Timestamp.Local().Format("2006-01-02 15:04"),
					truncate(e.Provider+"/"+e.Model, 34),
					e.InputTokens, e.OutputTokens,
					e.LatencyMs,
					eventResult(e),
				)
			}
			return nil
		})
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the prompt and reply of one grading request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		return withEventRepo(cmd, func(repo store.EventRepo) error {
			e, err := repo.GetLLMEvent(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("get event: %w", err)
			}
			if e == nil {
				return fmt.Errorf("event %d not found", id)
			}

			fmt.Printf("Request #%d (%s) at %s\n", e.ID, e.Purpose, e.Timestamp.Local().Format("2006-01-02 15:04:05"))
			fmt.Printf("  %s/%s, %d ms, %d tokens in, %d out\n",
				e.Provider, e.Model, e.LatencyMs, e.InputTokens, e.OutputTokens)
			fmt.Printf("  %s\n", eventResult(*e))

			printBody("Prompt", e.RequestBody)
			printBody("Reply", e.ResponseBody)
			return nil
		})
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize grading calls, fallbacks and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEventRepo(cmd, func(repo store.EventRepo) error {
			usage, err := repo.LLMUsageByPurpose(cmd.Context())
			if err != nil {
				return fmt.Errorf("query usage: %w", err)
			}
			models, err := repo.LLMUsageByModel(cmd.Context())
			if err != nil {
				return fmt.Errorf("query model usage: %w", err)
			}
			writeLLMStats(cmd.OutOrStdout(), usage, models)
			return nil
		})
	},
}

// withEventRepo opens the database for the duration of fn.
func withEventRepo(cmd *cobra.Command, fn func(store.EventRepo) error) error {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer s.Close()
	return fn(s.EventRepo())
}

// writeLLMStats reports grading first, since every failed grading call
// means an answer was checked by exact match instead.
func writeLLMStats(w io.Writer, usage []store.LLMUsageStats, models []store.LLMModelUsage) {
	if len(usage) == 0 {
		fmt.Fprintln(w, "No LLM calls recorded yet. Answers are graded by exact match.")
		return
	}

	var grading *store.LLMUsageStats
	for i := range usage {
		if usage[i].Purpose == gradingPurpose {
			grading = &usage[i]
		}
	}

	fmt.Fprintln(w, "Answer grading")
	if grading == nil {
		fmt.Fprintln(w, "  no grading calls yet")
	} else {
		fmt.Fprintf(w, "  %d calls, %d fell back to exact match\n", grading.Calls, grading.Failures)
		fmt.Fprintf(w, "  %d tokens, %d ms average\n", grading.InputTokens+grading.OutputTokens, grading.AvgLatencyMs)
	}

	if len(usage) > 1 || grading == nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Other purposes")
		for _, u := range usage {
			if u.Purpose == gradingPurpose {
				continue
			}
			fmt.Fprintf(w, "  %-14s %5d calls  %8d tokens\n", u.Purpose, u.Calls, u.InputTokens+u.OutputTokens)
		}
	}

	if len(models) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Estimated cost (USD)")
	var total float64
	var unpriced []string
	for _, m := range models {
		usd, ok := llm.EstimateCost(m.Model, m.InputTokens, m.OutputTokens)
		if !ok {
			unpriced = append(unpriced, m.Model)
			fmt.Fprintf(w, "  %-32s %5d calls  %9s\n", truncate(m.Model, 32), m.Calls, "?")
			continue
		}
		total += usd
		fmt.Fprintf(w, "  %-32s %5d calls  %9s\n", truncate(m.Model, 32), m.Calls, formatCost(usd))
	}
	fmt.Fprintf(w, "  %-32s %11s  %9s\n", "total", "", formatCost(total))
	if grading != nil && grading.Calls > 0 && len(unpriced) == 0 {
		fmt.Fprintf(w, "  %-32s %11s  %9s\n", "per graded answer", "", formatCost(total/float64(grading.Calls)))
	}
	if len(unpriced) > 0 {
		fmt.Fprintf(w, "\nNo pricing for: %s\n", strings.Join(unpriced, ", "))
	}
}

func eventResult(e store.LLMRequestEventRecord) string {
	if e.Success {
		return "ok"
	}
	if e.ErrorMessage == "" {
		return "failed"
	}
	return "failed: " + truncate(e.ErrorMessage, 60)
}

func printBody(title, body string) {
	fmt.Println()
	fmt.Println(title)
	fmt.Println(strings.Repeat("─", 60))
	if body == "" {
		fmt.Println("(not captured)")
		return
	}
	fmt.Println(body)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only show requests with this purpose (e.g. feedback)")
	llmListCmd.Flags().Bool("failed", false, "Only show failed requests")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
