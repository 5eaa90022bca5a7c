package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/citeview-labs/citeview-cli/internal/core/domain"
)

var (
	askTemplate    string
	askTopK        int
	askDiversify   bool
	askTemperature float64
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question and get a cited answer",
	Long: `Answers a question from the workspace's documents.

The answer streams as it is generated. Inline markers tie each claim to
a source chunk; the resolved sources are listed after the answer.

Templates frame the question for a specific task:
  default          - answer the question as asked
  summarize        - summarise what the sources say about a topic
  compare          - compare how the sources treat a topic
  extract_methods  - pull out methods and procedures
  review           - write a short literature review`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askTemplate, "template", "t", "default", "task template for the question")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", domain.DefaultTopK, "number of context chunks to retrieve")
	askCmd.Flags().BoolVar(&askDiversify, "diversify", false, "rerank retrieved context for diversity (MMR)")
	askCmd.Flags().Float64Var(&askTemperature, "temperature", 0, "generation temperature (0 = deterministic)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if services.Ask == nil {
		return errors.New("ask service not configured")
	}

	opts := domain.AskOptions{
		TopK:        askTopK,
		Diversify:   askDiversify,
		Template:    askTemplate,
		Temperature: askTemperature,
	}

	events, err := services.Ask.Ask(cmd.Context(), args[0], currentWorkspace(), opts)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	var citations []domain.Citation
	var summary *domain.AskSummary

	for ev := range events {
		switch ev.Type {
		case domain.EventToken:
			cmd.Print(ev.Token)
		case domain.EventCitations:
			citations = ev.Citations
		case domain.EventError:
			cmd.Println()
			return fmt.Errorf("generation failed: %s", ev.Err)
		case domain.EventDone:
			summary = ev.Summary
		}
	}
	cmd.Println()

	if len(citations) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for i, c := range citations {
			cmd.Printf("  [%d] %s\n", i+1, formatCitation(c))
		}
	}

	if verbose && summary != nil {
		cmd.Println()
		cmd.Printf("Retrieved %d chunks in %s, generated in %s via %s (%d citations)\n",
			summary.ChunksUsed,
			summary.RetrievalTime.Round(time.Millisecond),
			summary.GenerationTime.Round(time.Millisecond),
			summary.Provider,
			summary.CitationCount,
		)
	}
	return nil
}

func formatCitation(c domain.Citation) string {
	title := c.Title
	if title == "" {
		title = c.DocumentID
	}

	parts := []string{title}
	if len(c.Authors) > 0 {
		parts = append(parts, strings.Join(c.Authors, "; "))
	}
	if c.Year > 0 {
		parts = append(parts, fmt.Sprintf("%d", c.Year))
	}
	if c.Page > 0 {
		parts = append(parts, fmt.Sprintf("p.%d", c.Page))
	}
	return strings.Join(parts, ", ")
}
