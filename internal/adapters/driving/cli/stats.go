package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/citeview-labs/citeview-cli/internal/core/domain"
	"github.com/citeview-labs/citeview-cli/internal/core/ports/driven"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index and document statistics",
	Long: `Reports the state of both vector backends plus per-status
document counts for the active workspace.`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if services.VectorStore == nil {
		return errors.New("vector store not configured")
	}

	ctx := cmd.Context()

	cmd.Println("Vector backends:")
	for _, stat := range services.VectorStore.Stats(ctx) {
		state := "available"
		if !stat.Available {
			state = "unavailable"
		}
		cmd.Printf("  %-10s %s\n", stat.Backend, state)

		namespaces := make([]string, 0, len(stat.VectorCounts))
		for ns := range stat.VectorCounts {
			namespaces = append(namespaces, ns)
		}
		sort.Strings(namespaces)
		for _, ns := range namespaces {
			cmd.Printf("    %s: %d vectors\n", ns, stat.VectorCounts[ns])
		}
	}

	if services.Documents == nil {
		return nil
	}

	ws := currentWorkspace()
	cmd.Println()
	cmd.Printf("Documents in %q:\n", ws)
	for _, status := range []domain.DocumentStatus{
		domain.StatusReady, domain.StatusProcessing, domain.StatusPending, domain.StatusFailed,
	} {
		docs, err := services.Documents.FindDocuments(ctx, ws, driven.DocumentFilter{Status: status})
		if err != nil {
			return fmt.Errorf("counting documents: %w", err)
		}
		if len(docs) > 0 {
			cmd.Printf("  %-12s %d\n", status, len(docs))
		}
	}
	return nil
}
