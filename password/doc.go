// Package password provides the one-way credential verifiers used by the
// credauth engine.
//
// # Contract
//
// Hash produces a salted, non-deterministic digest. Verify compares a
// plaintext against a digest in constant time. A malformed or foreign
// digest verifies as false — it is never a flow-aborting fault, so a
// corrupted stored hash degrades to "invalid credentials" rather than an
// internal error.
//
// Two implementations ship with the module: [Argon2] (argon2id, PHC string
// format) and [Bcrypt]. Both satisfy [Verifier]; the engine does not care
// which algorithm produced a digest it is asked to verify.
package password
