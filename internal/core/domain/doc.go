// Package domain holds the values that flow through ingestion and
// retrieval: documents and their chunks, ranked source fragments, the
// ingest and query requests and responses, source types, and settings.
//
// It imports only the standard library. Everything else depends on it.
package domain
