package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/citeview-labs/citeview-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/citeview-labs/citeview-cli/internal/core/domain"
	"github.com/citeview-labs/citeview-cli/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to
// all metadata store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.citeview/data/metadata.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".citeview", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "metadata.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// ChatLogStore returns a ChatLogStore interface backed by this store.
func (s *Store) ChatLogStore() driven.ChatLogStore {
	return &chatLogStore{store: s}
}

// LexicalSearch returns a LexicalSearch interface backed by the FTS
// index.
func (s *Store) LexicalSearch() driven.LexicalSearch {
	return &lexicalSearch{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// SaveDocument stores or updates a document.
func (s *documentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if doc.ID == "" || doc.WorkspaceID == "" {
		return domain.ErrInvalidInput
	}

	authorsJSON, err := json.Marshal(doc.Authors)
	if err != nil {
		return fmt.Errorf("marshalling authors: %w", err)
	}

	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO documents
			(id, workspace_id, title, authors, year, venue, doi, external_id, content_hash, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			workspace_id = excluded.workspace_id,
			title = excluded.title,
			authors = excluded.authors,
			year = excluded.year,
			venue = excluded.venue,
			doi = excluded.doi,
			external_id = excluded.external_id,
			content_hash = excluded.content_hash,
			status = excluded.status,
			updated_at = excluded.updated_at
	`, doc.ID, doc.WorkspaceID, doc.Title, string(authorsJSON), doc.Year, doc.Venue,
		doc.DOI, doc.ExternalID, doc.ContentHash, string(doc.Status),
		doc.CreatedAt, doc.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// SaveChunks stores chunks for their document, replacing any previous
// chunk set. All chunks must belong to the same document.
func (s *documentStore) SaveChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	// Replace the document's chunk set so re-ingestion stays idempotent.
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM chunks WHERE document_id = ?", chunks[0].DocumentID); err != nil {
		return fmt.Errorf("clearing previous chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, idx, text, page, char_start, char_end, checksum, token_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.DocumentID, chunk.Index,
			chunk.Text, chunk.Page, chunk.CharStart, chunk.CharEnd,
			chunk.Checksum, chunk.TokenCount); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, workspace_id, title, authors, year, venue, doi, external_id, content_hash, status, created_at, updated_at
		FROM documents WHERE id = ?
	`, id)

	doc, err := scanDocument(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// GetChunk retrieves a specific chunk by ID.
func (s *documentStore) GetChunk(ctx context.Context, id string) (*domain.Chunk, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, document_id, idx, text, page, char_start, char_end, checksum, token_count
		FROM chunks WHERE id = ?
	`, id)

	var chunk domain.Chunk
	if err := row.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Index, &chunk.Text,
		&chunk.Page, &chunk.CharStart, &chunk.CharEnd, &chunk.Checksum, &chunk.TokenCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}
	return &chunk, nil
}

// GetChunks retrieves all chunks for a document ordered by index.
func (s *documentStore) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, document_id, idx, text, page, char_start, char_end, checksum, token_count
		FROM chunks WHERE document_id = ?
		ORDER BY idx
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var chunk domain.Chunk
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Index, &chunk.Text,
			&chunk.Page, &chunk.CharStart, &chunk.CharEnd, &chunk.Checksum, &chunk.TokenCount); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return chunks, nil
}

// FindDocuments returns documents in a workspace matching the filter.
func (s *documentStore) FindDocuments(
	ctx context.Context, workspaceID string, filter driven.DocumentFilter,
) ([]domain.Document, error) {
	query := `
		SELECT id, workspace_id, title, authors, year, venue, doi, external_id, content_hash, status, created_at, updated_at
		FROM documents WHERE workspace_id = ?`
	args := []any{workspaceID}

	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filter.Status))
	}
	if filter.ContentHash != "" {
		query += " AND content_hash = ?"
		args = append(args, filter.ContentHash)
	}
	if filter.YearFrom != 0 {
		query += " AND year >= ?"
		args = append(args, filter.YearFrom)
	}
	if filter.YearTo != 0 {
		query += " AND year <= ?"
		args = append(args, filter.YearTo)
	}
	query += " ORDER BY created_at"

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// DeleteDocument removes a document; its chunks cascade.
func (s *documentStore) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// scanDocument scans one document row via the given Scan function.
func scanDocument(scan func(...any) error) (*domain.Document, error) {
	var doc domain.Document
	var authorsJSON, status string

	if err := scan(&doc.ID, &doc.WorkspaceID, &doc.Title, &authorsJSON, &doc.Year,
		&doc.Venue, &doc.DOI, &doc.ExternalID, &doc.ContentHash, &status,
		&doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	if err := json.Unmarshal([]byte(authorsJSON), &doc.Authors); err != nil {
		return nil, fmt.Errorf("unmarshalling authors: %w", err)
	}
	doc.Status = domain.DocumentStatus(status)

	return &doc, nil
}

// ==================== Chat Log Store ====================

// chatLogStore implements driven.ChatLogStore.
type chatLogStore struct {
	store *Store
}

var _ driven.ChatLogStore = (*chatLogStore)(nil)

// Append writes one audit record.
func (s *chatLogStore) Append(ctx context.Context, record *domain.ChatLogRecord) error {
	if record.ID == "" || record.WorkspaceID == "" {
		return domain.ErrInvalidInput
	}

	usedJSON, err := json.Marshal(record.UsedChunkIDs)
	if err != nil {
		return fmt.Errorf("marshalling used chunk ids: %w", err)
	}
	citedJSON, err := json.Marshal(record.CitedChunkIDs)
	if err != nil {
		return fmt.Errorf("marshalling cited chunk ids: %w", err)
	}
	citationsJSON, err := json.Marshal(record.Citations)
	if err != nil {
		return fmt.Errorf("marshalling citations: %w", err)
	}
	traceJSON, err := json.Marshal(record.Trace)
	if err != nil {
		return fmt.Errorf("marshalling trace: %w", err)
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO chat_logs
			(id, workspace_id, question, answer, template, provider, used_chunk_ids, cited_chunk_ids, citations, trace, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, record.ID, record.WorkspaceID, record.Question, record.Answer,
		record.Template, record.Provider, string(usedJSON), string(citedJSON),
		string(citationsJSON), string(traceJSON), record.CreatedAt)

	if err != nil {
		return fmt.Errorf("appending chat log: %w", err)
	}
	return nil
}

// List returns the most recent records for a workspace in
// chronological order, up to limit.
func (s *chatLogStore) List(ctx context.Context, workspaceID string, limit int) ([]domain.ChatLogRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	// Fetch newest first, then reverse to chronological order.
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, workspace_id, question, answer, template, provider, used_chunk_ids, cited_chunk_ids, citations, trace, created_at
		FROM chat_logs WHERE workspace_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, workspaceID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying chat logs: %w", err)
	}
	defer rows.Close()

	var records []domain.ChatLogRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var rec domain.ChatLogRecord
		var usedJSON, citedJSON, citationsJSON, traceJSON string
		if err := rows.Scan(&rec.ID, &rec.WorkspaceID, &rec.Question, &rec.Answer,
			&rec.Template, &rec.Provider, &usedJSON, &citedJSON, &citationsJSON,
			&traceJSON, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning chat log: %w", err)
		}

		if err := json.Unmarshal([]byte(usedJSON), &rec.UsedChunkIDs); err != nil {
			return nil, fmt.Errorf("unmarshalling used chunk ids: %w", err)
		}
		if err := json.Unmarshal([]byte(citedJSON), &rec.CitedChunkIDs); err != nil {
			return nil, fmt.Errorf("unmarshalling cited chunk ids: %w", err)
		}
		if err := json.Unmarshal([]byte(citationsJSON), &rec.Citations); err != nil {
			return nil, fmt.Errorf("unmarshalling citations: %w", err)
		}
		if err := json.Unmarshal([]byte(traceJSON), &rec.Trace); err != nil {
			return nil, fmt.Errorf("unmarshalling trace: %w", err)
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chat logs: %w", err)
	}

	// Reverse into chronological order.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	return records, nil
}

// Clear removes all records for a workspace and returns the count
// deleted.
func (s *chatLogStore) Clear(ctx context.Context, workspaceID string) (int, error) {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM chat_logs WHERE workspace_id = ?", workspaceID)
	if err != nil {
		return 0, fmt.Errorf("clearing chat logs: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting cleared chat logs: %w", err)
	}
	return int(n), nil
}

// ==================== Lexical Search ====================

// lexicalSearch implements driven.LexicalSearch over the FTS5 index.
type lexicalSearch struct {
	store *Store
}

var _ driven.LexicalSearch = (*lexicalSearch)(nil)

// Search returns chunks in a workspace matching the query terms,
// scored and ranked best first. BM25 rank is mapped into (0, 1] so
// fusion can weight it against semantic scores.
func (s *lexicalSearch) Search(
	ctx context.Context, workspaceID, query string, limit int,
) ([]domain.RetrievalResult, error) {
	match := buildMatchQuery(query)
	if match == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = domain.DefaultTopK
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT c.id, c.document_id, c.page, d.title, bm25(chunks_fts) AS rank
		FROM chunks_fts
		JOIN chunks c ON c.rowid = chunks_fts.rowid
		JOIN documents d ON d.id = c.document_id
		WHERE chunks_fts MATCH ? AND d.workspace_id = ?
		ORDER BY rank
		LIMIT ?
	`, match, workspaceID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLexicalUnavailable, err)
	}
	defer rows.Close()

	var results []domain.RetrievalResult //nolint:prealloc // size unknown from query
	for rows.Next() {
		var chunkID, documentID, title string
		var page int
		var rank float64
		if err := rows.Scan(&chunkID, &documentID, &page, &title, &rank); err != nil {
			return nil, fmt.Errorf("scanning lexical match: %w", err)
		}

		// bm25() returns lower-is-better negative ranks. Map into a
		// bounded higher-is-better score in [0, 1).
		score := -rank / (1.0 - rank)
		if score < 0 {
			score = 0
		}

		results = append(results, domain.RetrievalResult{
			ChunkID: chunkID,
			Score:   score,
			Metadata: map[string]any{
				"document_id": documentID,
				"title":       title,
				"page":        page,
			},
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating lexical matches: %w", err)
	}

	return results, nil
}

// buildMatchQuery turns free text into an FTS5 match expression.
// Each term is quoted so user punctuation cannot break the query
// syntax; terms are OR-joined for recall.
func buildMatchQuery(query string) string {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return ""
	}

	quoted := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.ReplaceAll(term, `"`, "")
		if term == "" {
			continue
		}
		quoted = append(quoted, `"`+term+`"`)
	}
	return strings.Join(quoted, " OR ")
}
