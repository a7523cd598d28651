// Package api defines the wire-level types of the frage Q&A service:
// the User, Post, and Answer entities, the request and response payloads,
// the structured error taxonomy, entity ID generation, and request
// validation.
//
// The types in this package are shared between the transport layer, the
// forum core, and the storage adapters. They carry JSON tags for the HTTP
// surface; fields that must never leave the process (password hashes) are
// tagged `json:"-"`.
package api
