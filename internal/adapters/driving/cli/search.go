package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/citeview-labs/citeview-cli/internal/core/domain"
)

var (
	searchTopK      int
	searchDiversify bool
	searchSemantic  bool
	searchYearFrom  int
	searchYearTo    int
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Searches the workspace's indexed chunks.

By default the semantic (vector) and lexical (keyword) channels are
fused into one ranked list. Results are deduplicated per document,
keeping each document's best chunk.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", domain.DefaultTopK, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchDiversify, "diversify", false, "rerank for result diversity (MMR)")
	searchCmd.Flags().BoolVar(&searchSemantic, "semantic", false, "semantic channel only, skip keyword fusion")
	searchCmd.Flags().IntVar(&searchYearFrom, "year-from", 0, "only documents published in or after this year")
	searchCmd.Flags().IntVar(&searchYearTo, "year-to", 0, "only documents published in or before this year")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if services.Search == nil {
		return errors.New("search service not configured")
	}

	opts := domain.SearchOptions{
		TopK:      searchTopK,
		Diversify: searchDiversify,
		YearFrom:  searchYearFrom,
		YearTo:    searchYearTo,
	}

	ctx := cmd.Context()
	ws := currentWorkspace()

	var (
		outcome domain.SearchOutcome
		err     error
	)
	if searchSemantic {
		outcome, err = services.Search.SemanticSearch(ctx, args[0], ws, opts)
	} else {
		outcome, err = services.Search.HybridSearch(ctx, args[0], ws, opts)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		data, err := json.MarshalIndent(outcome.Results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	return printSearchResults(cmd, outcome)
}

func printSearchResults(cmd *cobra.Command, outcome domain.SearchOutcome) error {
	if len(outcome.Results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Printf("Found %d results in %s:\n\n", len(outcome.Results), outcome.Elapsed.Round(time.Millisecond))
	for i, r := range outcome.Results {
		title := r.Title
		if title == "" {
			title = r.DocumentID
		}

		var meta []string
		if len(r.Authors) > 0 {
			meta = append(meta, strings.Join(r.Authors, "; "))
		}
		if r.Year > 0 {
			meta = append(meta, fmt.Sprintf("%d", r.Year))
		}
		if r.Page > 0 {
			meta = append(meta, fmt.Sprintf("p.%d", r.Page))
		}

		cmd.Printf("[%d] %s (score %.3f)\n", i+1, title, r.Score)
		if len(meta) > 0 {
			cmd.Printf("    %s\n", strings.Join(meta, ", "))
		}
		if r.Snippet != "" {
			cmd.Printf("    %s\n", r.Snippet)
		}
		cmd.Println()
	}
	return nil
}
