// Package ollama provides embedding and generation adapters for an
// Ollama-compatible local inference server. All network calls go
// through the shared resilience client so retries, the circuit
// breaker, and the concurrency gate apply uniformly.
package ollama
