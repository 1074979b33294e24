// Package driven holds the interfaces core services call out through.
//
// Ingestion runs Ingester → Splitter → EmbeddingService → VectorIndex.
// Querying runs EmbeddingService → VectorIndex → LLMService.
// ConfigStore and PromptStore back settings and answer templates.
//
// Adapters under internal/adapters/driven, internal/ingesters and
// internal/postprocessors implement these; this package imports only domain.
package driven
