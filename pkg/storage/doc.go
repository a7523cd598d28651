// Package storage defines the persistence contract for the Q&A service:
// the Store interface, the sentinel errors adapters return, and the
// tenant context helpers that scope every operation.
//
// Adapters live in the memory and postgres subpackages and depend only
// on this package, so consumers and adapters never import each other.
package storage
