// Package driving provides interfaces for the inbound surface consumed
// by a UI or CLI (primary ports). Callers depend only on these
// contracts, never on internal component state.
package driving
