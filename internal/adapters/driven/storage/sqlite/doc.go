// Package sqlite provides a persistent vector index on a single SQLite file.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. Vectors are stored as little-endian float32 BLOBs and the
// payload as JSON. Search is brute-force cosine over the collection, which is
// fine for the tens of thousands of chunks a local knowledge base holds.
//
// # Schema
//
// Migrations are embedded and applied on open:
//
//   - collections: name and fixed dimension
//   - points: one row per chunk, ordered by insertion
//
// # Concurrency
//
// The database runs in WAL mode with a busy timeout, so concurrent readers
// do not block a writer.
package sqlite
