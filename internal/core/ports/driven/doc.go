// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): storage, chunking, and the inference
// server clients.
package driven
