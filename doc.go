// Package credauth provides a credential authentication engine with JWT access
// and refresh tokens, failed-attempt lockout, and pluggable account storage.
//
// The package is designed for concurrent server workloads: Engine methods are safe to call
// from multiple goroutines after initialization through [Builder.Build].
//
// # Architecture boundaries
//
// credauth is the public surface. It exposes [Engine], [Builder], [Config], and value types
// (TokenPair, RegisterResult, MetricsSnapshot, etc.). All internal coordination — flow
// orchestration, lockout transitions, audit dispatch — lives under internal/ and is never
// exported.
//
// # What this package must NOT do
//
//   - Expose store clients or hashing internals in its public API.
//   - Perform I/O outside of Engine methods (construction via Builder is allocation-only
//     until Build).
//   - Import any sub-package that re-imports credauth (no import cycles).
//
// # Performance contract
//
// Validate is the hot path. It is pure CPU work with no store round-trips; two concurrent
// Validate calls never contend. Login and Register are allowed one store round-trip per
// step of their read-modify-write sequence.
package credauth
