// Package env layers environment variables over a driven.ConfigStore.
//
// Variables use the names of the original deployment (LLM_PROVIDER,
// QDRANT_COLLECTION_NAME, CHUNK_SIZE, ...) so existing .env files keep
// working. A set variable always wins over the file value.
package env

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure Overlay implements the interface.
var _ driven.ConfigStore = (*Overlay)(nil)

// Variables maps config keys to the environment variables that override them.
//
//nolint:gosec // G101: variable names, not credentials.
var Variables = map[string][]string{
	"llm.provider":                  {"LLM_PROVIDER"},
	"llm.model":                     {"LLM_MODEL_NAME", "LLM_MODEL"},
	"llm.base_url":                  {"LLM_BASE_URL"},
	"llm.temperature":               {"LLM_TEMPERATURE"},
	"llm.top_k":                     {"LLM_TOP_K"},
	"llm.top_p":                     {"LLM_TOP_P"},
	"llm.timeout":                   {"LLM_TIMEOUT"},
	"llm.retries":                   {"LLM_RETRIES"},
	"openai.api_key":                {"OPENAI_API_KEY"},
	"anthropic.api_key":             {"ANTHROPIC_API_KEY"},
	"embedding.provider":            {"EMBEDDING_PROVIDER"},
	"embedding.model":               {"EMBEDDING_MODEL_NAME", "EMBEDDING_MODEL"},
	"embedding.base_url":            {"EMBEDDING_BASE_URL"},
	"embedding.dimensions":          {"EMBEDDING_DIMENSIONS"},
	"embedding.requests_per_second": {"EMBEDDING_REQUESTS_PER_SECOND"},
	"embedding.retries":             {"EMBEDDING_RETRIES"},
	"vector_store.backend":          {"VECTOR_BACKEND"},
	"vector_store.collection":       {"QDRANT_COLLECTION_NAME", "VECTOR_COLLECTION"},
	"vector_store.path":             {"VECTOR_STORE_PATH"},
	"vector_store.url":              {"QDRANT_URL", "PGVECTOR_URL"},
	"vector_store.api_key":          {"QDRANT_API_KEY"},
	"retrieval.top_k":               {"RETRIEVAL_TOP_K"},
	"chunking.size":                 {"CHUNK_SIZE"},
	"chunking.overlap":              {"CHUNK_OVERLAP"},
	"database.url":                  {"DATABASE_URL"},
	"server.addr":                   {"SERVER_ADDR"},
}

// LookupFunc reads one environment variable.
type LookupFunc func(key string) (string, bool)

// Overlay answers reads from the environment first, then the wrapped store.
// Writes go to the wrapped store only.
type Overlay struct {
	next   driven.ConfigStore
	lookup LookupFunc
}

// Load reads .env files into the process environment without replacing
// variables that are already set. Missing files are skipped.
func Load(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// NewOverlay wraps next. A nil lookup reads the process environment.
func NewOverlay(next driven.ConfigStore, lookup LookupFunc) *Overlay {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &Overlay{next: next, lookup: lookup}
}

// env returns the first non-empty variable mapped to key.
func (o *Overlay) env(key string) (string, bool) {
	for _, name := range Variables[key] {
		if v, ok := o.lookup(name); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), true
		}
	}
	if key == "vector_store.url" {
		return o.qdrantHostPort()
	}
	return "", false
}

// qdrantHostPort builds a URL from QDRANT_HOST and QDRANT_PORT.
func (o *Overlay) qdrantHostPort() (string, bool) {
	host, ok := o.lookup("QDRANT_HOST")
	if !ok || host == "" {
		return "", false
	}
	port, ok := o.lookup("QDRANT_PORT")
	if !ok || port == "" {
		port = "6333"
	}
	return fmt.Sprintf("http://%s:%s", host, port), true
}

// Get retrieves a value, preferring the environment.
func (o *Overlay) Get(key string) (any, bool) {
	if v, ok := o.env(key); ok {
		return v, true
	}
	return o.next.Get(key)
}

// GetString retrieves a string value.
func (o *Overlay) GetString(key string) string {
	if v, ok := o.env(key); ok {
		return v
	}
	return o.next.GetString(key)
}

// GetInt retrieves an integer value. Unparseable variables are ignored.
func (o *Overlay) GetInt(key string) int {
	if v, ok := o.env(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return o.next.GetInt(key)
}

// GetFloat retrieves a floating-point value. Unparseable variables are ignored.
func (o *Overlay) GetFloat(key string) float64 {
	if v, ok := o.env(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return o.next.GetFloat(key)
}

// GetBool retrieves a boolean value. Unparseable variables are ignored.
func (o *Overlay) GetBool(key string) bool {
	if v, ok := o.env(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return o.next.GetBool(key)
}

// GetStringSlice retrieves a comma-separated variable or the stored slice.
func (o *Overlay) GetStringSlice(key string) []string {
	if v, ok := o.env(key); ok {
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return o.next.GetStringSlice(key)
}

// Set stores a value in the wrapped store.
func (o *Overlay) Set(key string, value any) error {
	return o.next.Set(key, value)
}

// Save persists the wrapped store.
func (o *Overlay) Save() error {
	return o.next.Save()
}

// Load reloads the wrapped store.
func (o *Overlay) Load() error {
	return o.next.Load()
}

// Path returns the wrapped store's file path.
func (o *Overlay) Path() string {
	return o.next.Path()
}
