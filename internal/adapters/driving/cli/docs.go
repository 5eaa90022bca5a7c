package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/citeview-labs/citeview-cli/internal/core/domain"
	"github.com/citeview-labs/citeview-cli/internal/core/ports/driven"
)

var docsStatus string

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Manage ingested documents",
	RunE:  runDocsList,
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents in the workspace",
	RunE:  runDocsList,
}

var docsShowCmd = &cobra.Command{
	Use:   "show [document-id]",
	Short: "Show a document's metadata and chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsShow,
}

var docsRemoveCmd = &cobra.Command{
	Use:   "remove [document-id]",
	Short: "Remove a document, its chunks, and its vectors",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsRemove,
}

func init() {
	docsListCmd.Flags().StringVar(&docsStatus, "status", "", "filter by status (pending, processing, ready, failed)")
	docsCmd.AddCommand(docsListCmd)
	docsCmd.AddCommand(docsShowCmd)
	docsCmd.AddCommand(docsRemoveCmd)
	rootCmd.AddCommand(docsCmd)
}

func runDocsList(cmd *cobra.Command, _ []string) error {
	if services.Documents == nil {
		return errors.New("document store not configured")
	}

	filter := driven.DocumentFilter{}
	if docsStatus != "" {
		status := domain.DocumentStatus(docsStatus)
		if !status.IsValid() {
			return fmt.Errorf("unknown status %q", docsStatus)
		}
		filter.Status = status
	}

	docs, err := services.Documents.FindDocuments(cmd.Context(), currentWorkspace(), filter)
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents in this workspace.")
		return nil
	}

	for _, doc := range docs {
		year := ""
		if doc.Year > 0 {
			year = fmt.Sprintf(" (%d)", doc.Year)
		}
		cmd.Printf("%s  [%s]  %s%s\n", doc.ID, doc.Status, doc.Title, year)
	}
	return nil
}

func runDocsShow(cmd *cobra.Command, args []string) error {
	if services.Documents == nil {
		return errors.New("document store not configured")
	}

	ctx := cmd.Context()
	doc, err := services.Documents.GetDocument(ctx, args[0])
	if err != nil {
		return fmt.Errorf("getting document: %w", err)
	}
	if doc.WorkspaceID != currentWorkspace() {
		return domain.ErrNotFound
	}

	cmd.Printf("ID:        %s\n", doc.ID)
	cmd.Printf("Title:     %s\n", doc.Title)
	if len(doc.Authors) > 0 {
		cmd.Printf("Authors:   %s\n", strings.Join(doc.Authors, "; "))
	}
	if doc.Year > 0 {
		cmd.Printf("Year:      %d\n", doc.Year)
	}
	if doc.Venue != "" {
		cmd.Printf("Venue:     %s\n", doc.Venue)
	}
	if doc.DOI != "" {
		cmd.Printf("DOI:       %s\n", doc.DOI)
	}
	cmd.Printf("Status:    %s\n", doc.Status)
	cmd.Printf("Ingested:  %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))

	chunks, err := services.Documents.GetChunks(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("getting chunks: %w", err)
	}
	cmd.Printf("Chunks:    %d\n", len(chunks))
	return nil
}

func runDocsRemove(cmd *cobra.Command, args []string) error {
	if services.Ingest == nil {
		return errors.New("ingest service not configured")
	}

	if err := services.Ingest.Remove(cmd.Context(), currentWorkspace(), args[0]); err != nil {
		return fmt.Errorf("removing document: %w", err)
	}
	cmd.Printf("Removed %s\n", args[0])
	return nil
}
