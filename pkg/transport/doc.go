// Package transport holds the HTTP plumbing shared by the adapter in the
// http subpackage: the APIError-to-status mapping, JSON response writers,
// and handler middleware for request IDs, logging, panic recovery, and
// tenant propagation.
package transport
