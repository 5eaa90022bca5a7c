// Package citations extracts inline citation markers from generated
// text and resolves them to document and chunk metadata.
//
// The generation model is instructed to append a marker of the form
// [[CITE:chunk_id]] after every fact it takes from a context chunk.
package citations

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/citeview-labs/citeview-cli/internal/core/domain"
	"github.com/citeview-labs/citeview-cli/internal/core/ports/driven"
	"github.com/citeview-labs/citeview-cli/internal/logger"
)

// SnippetLength bounds the citation snippet taken from chunk text.
const SnippetLength = 200

// markerPattern matches one citation marker and captures the chunk ID.
var markerPattern = regexp.MustCompile(`\[\[CITE:([0-9A-Za-z_-]+)\]\]`)

// Parse extracts all citation markers from text in order of
// appearance. Duplicates are retained; callers that need unique IDs
// deduplicate themselves.
func Parse(text string) []string {
	matches := markerPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m[1])
	}
	return ids
}

// Resolve looks up each unique chunk ID in first-seen order and builds
// citation records from the chunk and its owning document. IDs whose
// chunk no longer exists are silently dropped, so the resolved list
// may be shorter than the raw marker count.
func Resolve(ctx context.Context, ids []string, store driven.DocumentStore) ([]domain.Citation, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	seen := make(map[string]bool, len(ids))
	citations := make([]domain.Citation, 0, len(ids))

	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		chunk, err := store.GetChunk(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Cited chunk was deleted since generation. Expected,
				// not an error.
				logger.Debug("Dropping dangling citation %s", id)
				continue
			}
			return nil, fmt.Errorf("get chunk %s: %w", id, err)
		}

		citation := domain.Citation{
			ChunkID:    id,
			DocumentID: chunk.DocumentID,
			Page:       chunk.Page,
			Snippet:    snippet(chunk.Text),
		}

		doc, err := store.GetDocument(ctx, chunk.DocumentID)
		switch {
		case err == nil:
			citation.Title = doc.Title
			citation.Authors = doc.Authors
			citation.Year = doc.Year
			citation.DOI = doc.DOI
		case errors.Is(err, domain.ErrNotFound):
			citation.Title = "Unknown"
		default:
			return nil, fmt.Errorf("get document %s: %w", chunk.DocumentID, err)
		}

		citations = append(citations, citation)
	}

	return citations, nil
}

// ReplaceWithNumbers rewrites markers into sequential bracket numbers
// for footnote-style display. IDs missing from numbering render as an
// explicit unresolved placeholder instead of disappearing.
func ReplaceWithNumbers(text string, numbering map[string]int) string {
	return markerPattern.ReplaceAllStringFunc(text, func(marker string) string {
		id := markerPattern.FindStringSubmatch(marker)[1]
		n, ok := numbering[id]
		if !ok {
			return "[?]"
		}
		return fmt.Sprintf("[%d]", n)
	})
}

// Numbering assigns sequential numbers to the resolved citations in
// order, for use with ReplaceWithNumbers.
func Numbering(resolved []domain.Citation) map[string]int {
	numbering := make(map[string]int, len(resolved))
	for i, c := range resolved {
		numbering[c.ChunkID] = i + 1
	}
	return numbering
}

// snippet returns a bounded prefix of chunk text.
func snippet(text string) string {
	if len(text) > SnippetLength {
		return text[:SnippetLength]
	}
	return text
}
