// Package audit defines the structured audit event model and the
// asynchronous dispatcher that forwards events to a caller-supplied sink.
//
// # Architecture boundaries
//
// The engine emits events; sinks consume them. The dispatcher sits in
// between with a bounded buffer so a slow sink never blocks a login. When
// DropIfFull is set, overflow events are counted and discarded instead of
// applying backpressure.
//
// # What this package must NOT do
//
//   - Import the credauth root package (no import cycles).
//   - Block request paths on sink latency.
package audit
