// Package services contains the core business logic: document
// ingestion and processing, retrieval, prompt composition, and the
// chat pipeline that glues them together. Services depend only on the
// port interfaces, never on concrete adapters.
package services
