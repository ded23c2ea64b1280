// Package middleware exposes HTTP middleware adapters for bearer-token
// enforcement built on top of credauth.Engine validation.
//
// # Guards
//
//   - [Guard] — verifies the Authorization bearer token and injects the
//     authenticated subject into the request context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT implement
// authentication logic itself — all decisions are delegated to Engine.ValidateSubject.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Access the account store (Engine handles I/O).
//   - Make authorization decisions beyond pass/reject from Engine.ValidateSubject.
package middleware
