package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidRequest indicates a malformed ingest or query request.
	ErrInvalidRequest = errors.New("invalid request")

	// Ingestion Errors.

	// ErrMissingSource indicates neither a source path nor inline content was supplied.
	ErrMissingSource = errors.New("either source path or content must be provided")

	// ErrUnsupportedSourceType indicates no ingester is registered for the source type.
	ErrUnsupportedSourceType = errors.New("unsupported source type")

	// ErrFileNotFound indicates the source path does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrEncoding indicates the content could not be decoded as text
	// or is not well-formed for its declared format.
	ErrEncoding = errors.New("content is not decodable")

	// ErrMissingQueryOrTable indicates a relational source has neither a table name nor a query.
	ErrMissingQueryOrTable = errors.New("either table name or query must be provided")

	// ErrTableNotFound indicates the named table does not exist in the database.
	ErrTableNotFound = errors.New("table does not exist")

	// Index Errors.

	// ErrLengthMismatch indicates the number of chunks and vectors differ.
	ErrLengthMismatch = errors.New("chunks and vectors length mismatch")

	// ErrDimensionMismatch indicates a vector's length differs from the collection dimension.
	// This is a configuration error between the embedding backend and the vector index.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrCollectionNotReady indicates the index was used before EnsureCollection.
	ErrCollectionNotReady = errors.New("collection not initialised")

	// Provider Errors.

	// ErrUnknownProvider indicates an unrecognised LLM, embedding, or vector store identifier.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrMissingCredential indicates a hosted provider has no API key configured.
	ErrMissingCredential = errors.New("missing credential")

	// Query Errors.

	// ErrEmptyQuestion indicates the question is blank or whitespace-only.
	ErrEmptyQuestion = errors.New("question cannot be empty")
)
