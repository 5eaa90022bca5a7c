// Package services implements the core application logic as driving
// port implementations, depending only on domain types and driven
// ports.
//
// Services:
//   - SearchService: semantic retrieval, MMR diversification, hybrid
//     lexical/semantic fusion
//   - AskService: the streaming question-answering pipeline with
//     citation resolution and audit persistence
//   - IngestService: chunking, embedding, and indexing of documents
package services
