package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/citeview-labs/citeview-cli/internal/citations"
)

var (
	historyLimit int
	historyFull  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past questions and answers",
	Long: `Shows the workspace's Q&A audit log, oldest first.

Citation markers in stored answers are rendered as bracketed numbers
with a numbered source list per entry.`,
	RunE: runHistory,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the workspace's Q&A history",
	RunE:  runHistoryClear,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of entries to show")
	historyCmd.Flags().BoolVar(&historyFull, "full", false, "show full answers instead of the first lines")
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if services.Ask == nil {
		return errors.New("ask service not configured")
	}

	records, err := services.Ask.History(cmd.Context(), currentWorkspace(), historyLimit)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	if len(records) == 0 {
		cmd.Println("No history in this workspace.")
		return nil
	}

	for _, rec := range records {
		cmd.Printf("%s  %s\n", rec.CreatedAt.Local().Format(time.DateTime), rec.Question)

		numbering := citations.Numbering(rec.Citations)
		answer := citations.ReplaceWithNumbers(rec.Answer, numbering)
		if !historyFull {
			answer = firstLines(answer, 3)
		}
		cmd.Printf("  %s\n", answer)

		for i, c := range rec.Citations {
			cmd.Printf("    [%d] %s\n", i+1, formatCitation(c))
		}
		cmd.Println()
	}
	return nil
}

func runHistoryClear(cmd *cobra.Command, _ []string) error {
	if services.Ask == nil {
		return errors.New("ask service not configured")
	}

	removed, err := services.Ask.ClearHistory(cmd.Context(), currentWorkspace())
	if err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	cmd.Printf("Removed %d entries\n", removed)
	return nil
}

// firstLines bounds multi-line text for compact display.
func firstLines(s string, n int) string {
	count := 0
	for i, r := range s {
		if r != '\n' {
			continue
		}
		count++
		if count == n {
			return s[:i] + " ..."
		}
	}
	return s
}
