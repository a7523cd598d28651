// Package auth implements the authentication flow of the frage service:
// bcrypt password hashing and verification, HS256 bearer-token issuance
// and validation, resolution of a token back to its user record, and the
// HTTP middleware that guards mutation endpoints.
//
// Token verification is stateless: a token is valid until its embedded
// expiry regardless of later account changes. There is no revocation
// list. This trades revocability for horizontal scalability, which is
// acceptable at the scale this service targets.
package auth
