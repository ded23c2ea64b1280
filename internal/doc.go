// Package internal contains helper packages that are intentionally private to
// credauth.
//
// # Sub-packages
//
//   - audit — async event dispatch (Dispatcher + Sink implementations)
//   - flows — pure-function flow orchestrators for every Engine operation
//   - lockout — failed-attempt lockout state machine
//
// # What this package must NOT do
//
//   - Export types that appear in the public credauth API.
//   - Be imported by any package outside the credauth module.
package internal
