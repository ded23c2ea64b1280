// Package flows contains pure-function orchestrators for every Engine operation.
//
// Each flow function (RunRegister, RunLogin, RunRefresh, RunValidate) accepts a
// typed dependency struct and returns a result carrying either the success
// payload or a classified failure kind. This design enables exhaustive unit
// testing with mock dependencies and keeps the Engine type thin.
//
// # Architecture boundaries
//
// Flow functions coordinate calls to the account store, password verifier,
// token codec, audit dispatcher, and metrics. They do NOT own any of these
// resources — ownership stays with the Engine.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import credauth (to avoid import cycles).
//   - Perform I/O directly — all I/O is mediated through dependency functions.
package flows
