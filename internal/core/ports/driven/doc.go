// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): document storage, embedding generation,
// the vector index, the keyword index, and configuration.
package driven
