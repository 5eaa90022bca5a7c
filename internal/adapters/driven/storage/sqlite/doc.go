// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - DocumentStore: Document and chunk persistence
//   - ChatLogStore: Append-only Q&A audit records
//   - LexicalSearch: FTS5 keyword retrieval over chunk text
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory as .up.sql files. The chunks_fts virtual table is kept
// in sync with chunks through triggers defined in the initial migration.
//
// # Data Location
//
// By default, the database is stored at ~/.citeview/data/metadata.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
