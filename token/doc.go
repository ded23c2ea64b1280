// Package token signs and verifies the compact session tokens issued by the
// credauth engine.
//
// # Design
//
// Tokens are self-contained JWTs over github.com/golang-jwt/jwt/v5. Access
// and refresh tokens share one claim shape and are distinguished by a "knd"
// claim and their expiry horizon. There is no server-side session table and
// no revocation before expiry.
//
// Verification failures are exactly two kinds: [ErrExpired] for a correctly
// signed token past its expiry, and [ErrInvalid] for everything else. The
// split is part of the client contract — expired tokens are silently
// refreshed, invalid tokens force a re-login.
//
// # What this package must NOT do
//
//   - Read key material from the environment. Keys arrive via [Config].
//   - Import the credauth root package or the store (no I/O, no state).
package token
