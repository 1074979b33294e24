// Package file keeps pipeline settings and answer prompts on the local
// filesystem, by default under ~/.sercha-rag:
//
//	config.toml        provider, vector store, chunking and retrieval settings
//	prompts/*.txt      answer templates, seeded from built-in defaults
package file
