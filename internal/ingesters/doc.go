// Package ingesters resolves the Ingester variant for an ingest request.
//
// Each source type has its own package:
//
//   - tabular: CSV rows, one Document per row
//   - structured: JSON leaves, one Document per scalar
//   - plaintext: the whole text as one Document
//   - markup: visible HTML text as one Document
//   - relational: SQL rows from a table scan or a query
//
// Ingesters only parse. Chunking, embedding and storage are the
// ingestion pipeline's job.
package ingesters
