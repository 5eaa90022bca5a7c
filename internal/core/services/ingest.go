package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/citeview-labs/citeview-cli/internal/chunker"
	"github.com/citeview-labs/citeview-cli/internal/core/domain"
	"github.com/citeview-labs/citeview-cli/internal/core/ports/driven"
	"github.com/citeview-labs/citeview-cli/internal/core/ports/driving"
	"github.com/citeview-labs/citeview-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// previewLength bounds the text_preview stored in vector metadata.
const previewLength = 200

// IngestService turns extracted page text into stored, embedded,
// indexed chunks. Re-ingesting identical content is detected by hash
// and skipped; re-ingesting changed content overwrites in place.
type IngestService struct {
	docStore         driven.DocumentStore
	vectorStore      driven.VectorStore
	embeddingService driven.EmbeddingService
	chunker          *chunker.Chunker
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	docStore driven.DocumentStore,
	vectorStore driven.VectorStore,
	embeddingService driven.EmbeddingService,
	ck *chunker.Chunker,
) *IngestService {
	if ck == nil {
		ck = chunker.New()
	}
	return &IngestService{
		docStore:         docStore,
		vectorStore:      vectorStore,
		embeddingService: embeddingService,
		chunker:          ck,
	}
}

// Ingest chunks, embeds, and indexes one document. A document whose
// content hash already exists in the workspace is reported as a
// duplicate, not re-processed.
func (s *IngestService) Ingest(ctx context.Context, req driving.IngestRequest) (*driving.IngestResult, error) {
	if s.embeddingService == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	logger.Section("Ingest")
	logger.Debug("Ingesting %q into workspace %s (%d pages)", req.Title, req.WorkspaceID, len(req.Pages))

	hash := contentHash(req.Pages)

	existing, err := s.docStore.FindDocuments(ctx, req.WorkspaceID, driven.DocumentFilter{ContentHash: hash})
	if err != nil {
		return nil, fmt.Errorf("checking for duplicates: %w", err)
	}
	if len(existing) > 0 {
		logger.Info("Document %q already ingested as %s, skipping", req.Title, existing[0].ID)
		return &driving.IngestResult{DocumentID: existing[0].ID, Duplicate: true}, nil
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:          uuid.NewString(),
		WorkspaceID: req.WorkspaceID,
		Title:       req.Title,
		Authors:     req.Authors,
		Year:        req.Year,
		Venue:       req.Venue,
		DOI:         req.DOI,
		ContentHash: hash,
		Status:      domain.StatusProcessing,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	chunks := s.chunker.Chunk(doc.ID, req.Pages)
	if len(chunks) == 0 {
		// Record the failure so repeated attempts are visible in stats.
		doc.Status = domain.StatusFailed
		if saveErr := s.docStore.SaveDocument(ctx, doc); saveErr != nil {
			logger.Warn("Saving failed document record: %v", saveErr)
		}
		return nil, fmt.Errorf("ingesting %q: %w", req.Title, domain.ErrNoText)
	}
	logger.Debug("Chunked into %d chunks", len(chunks))

	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("saving document: %w", err)
	}
	if err := s.docStore.SaveChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("saving chunks: %w", err)
	}

	if err := s.index(ctx, doc, chunks); err != nil {
		doc.Status = domain.StatusFailed
		doc.UpdatedAt = time.Now().UTC()
		if saveErr := s.docStore.SaveDocument(ctx, doc); saveErr != nil {
			logger.Warn("Marking document failed: %v", saveErr)
		}
		return nil, err
	}

	doc.Status = domain.StatusReady
	doc.UpdatedAt = time.Now().UTC()
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("marking document ready: %w", err)
	}

	logger.Info("Ingested %q: %d chunks indexed", req.Title, len(chunks))
	return &driving.IngestResult{DocumentID: doc.ID, Chunks: len(chunks)}, nil
}

// index embeds the chunks and upserts them into the document's
// workspace namespace.
func (s *IngestService) index(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}

	vectors, err := s.embeddingService.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedding chunks: got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	records := make([]domain.VectorRecord, len(chunks))
	for i, ch := range chunks {
		records[i] = domain.VectorRecord{
			ID:     ch.ID,
			Values: vectors[i],
			Metadata: map[string]any{
				"document_id":  doc.ID,
				"chunk_index":  ch.Index,
				"page":         ch.Page,
				"title":        doc.Title,
				"year":         doc.Year,
				"text_preview": truncate(ch.Text, previewLength),
			},
		}
	}

	if err := s.vectorStore.Upsert(ctx, doc.WorkspaceID, records); err != nil {
		return fmt.Errorf("indexing vectors: %w", err)
	}
	return nil
}

// Remove deletes a document, its chunks, and its vectors. The vector
// delete runs first so a metadata failure leaves no orphaned vectors.
func (s *IngestService) Remove(ctx context.Context, workspaceID, documentID string) error {
	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.WorkspaceID != workspaceID {
		return domain.ErrNotFound
	}

	if err := s.vectorStore.DeleteByDocument(ctx, workspaceID, documentID); err != nil {
		return fmt.Errorf("deleting vectors: %w", err)
	}
	if err := s.docStore.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}

	logger.Info("Removed document %s from workspace %s", documentID, workspaceID)
	return nil
}

// contentHash fingerprints the extracted text for duplicate detection.
func contentHash(pages []domain.Page) string {
	h := sha256.New()
	for _, p := range pages {
		h.Write([]byte(strings.TrimSpace(p.Text)))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
