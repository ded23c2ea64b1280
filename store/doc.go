// Package store defines the durable credential-record store consumed by the
// credauth engine, plus the backends shipped with the module.
//
// # Design
//
// A Record is keyed by its account identifier. All lockout bookkeeping
// (failed attempt counter, lock flag, lock timestamp) lives in the Record,
// never in the engine, so any number of engine instances can share one
// store.
//
// Update is the only mutation primitive the engine uses on the login path.
// Backends must serialize Update per account identifier: two concurrent
// failed logins for the same account must both count. Memory uses a process
// mutex, Redis an optimistic WATCH transaction, Gorm a SELECT ... FOR UPDATE
// row lock.
//
// # What this package must NOT do
//
//   - Interpret lockout state. Policy decisions belong to the engine.
//   - Import the credauth root package (no import cycles).
package store
