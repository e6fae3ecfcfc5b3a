// Package domain contains the core business entities and rules for the
// document-grounded chat pipeline: documents, chunks, chat history,
// similarity math, and pipeline settings. It has no dependencies on
// adapters or infrastructure.
package domain
