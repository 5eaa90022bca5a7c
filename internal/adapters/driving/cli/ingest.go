package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/citeview-labs/citeview-cli/internal/core/ports/driving"
	"github.com/citeview-labs/citeview-cli/internal/extract"
	"github.com/citeview-labs/citeview-cli/internal/logger"
)

var (
	ingestTitle   string
	ingestAuthors []string
	ingestYear    int
	ingestVenue   string
	ingestDOI     string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Ingest documents into the workspace",
	Long: `Extracts, chunks, embeds, and indexes local files.

Plain text and markdown files are supported. A form feed character in
the input starts a new page. Re-ingesting a file whose content has not
changed is detected and skipped.

The --title flag only applies when ingesting a single file; with
multiple files, titles come from the file content or name.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestTitle, "title", "", "document title (single file only)")
	ingestCmd.Flags().StringSliceVar(&ingestAuthors, "author", nil, "document author, repeatable")
	ingestCmd.Flags().IntVar(&ingestYear, "year", 0, "publication year")
	ingestCmd.Flags().StringVar(&ingestVenue, "venue", "", "journal or conference name")
	ingestCmd.Flags().StringVar(&ingestDOI, "doi", "", "digital object identifier")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if services.Ingest == nil {
		return errors.New("ingest service not configured")
	}
	if ingestTitle != "" && len(args) > 1 {
		return errors.New("--title cannot be used with multiple files")
	}

	ws := currentWorkspace()
	failed := 0

	for _, path := range args {
		result, err := ingestFile(cmd, ws, path)
		if err != nil {
			// One bad file must not sink the batch.
			logger.Warn("Ingest of %s failed: %v", path, err)
			cmd.Printf("FAILED  %s: %v\n", path, err)
			failed++
			continue
		}

		switch {
		case result.Duplicate:
			cmd.Printf("skipped %s: already ingested (%s)\n", path, result.DocumentID)
		default:
			cmd.Printf("ok      %s: %d chunks (%s)\n", path, result.Chunks, result.DocumentID)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}

func ingestFile(cmd *cobra.Command, workspaceID, path string) (*driving.IngestResult, error) {
	extracted, err := extract.File(path)
	if err != nil {
		return nil, err
	}

	title := ingestTitle
	if title == "" {
		title = extracted.Title
	}

	return services.Ingest.Ingest(cmd.Context(), driving.IngestRequest{
		WorkspaceID: workspaceID,
		Title:       title,
		Authors:     ingestAuthors,
		Year:        ingestYear,
		Venue:       ingestVenue,
		DOI:         ingestDOI,
		Pages:       extracted.Pages,
	})
}
