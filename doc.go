// Package authgate provides credential issuance and session lifecycle
// management: password sign-up and sign-in, short-lived HS256 access tokens,
// long-lived rotating opaque refresh tokens, and sign-out revocation through
// a Redis-backed denylist.
//
// The package is designed for concurrent server workloads: Engine methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authgate is the public surface. It exposes [Engine], [Builder], [Config],
// the [UserStore] interface, and value types. Token signing lives in jwt,
// rotation in refresh, revocation in denylist, hashing in password; store
// implementations live under store/.
//
// User and refresh-token persistence is an external collaborator: callers
// hand the Builder a [UserStore] and a refresh.Store (or a Redis client for
// the bundled Redis token store) and the Engine treats each store call as
// transactional on its own — no cross-call transactions are assumed.
//
// # What this package must NOT do
//
//   - Expose Redis clients, store internals, or signing keys in its API.
//   - Carry ambient identity. Every operation that acts on behalf of a
//     caller takes a verified subject id as an explicit argument; the
//     middleware package produces it.
//   - Retry failed operations. Every failure maps to one of the sentinel
//     errors in errors.go and is surfaced immediately.
package authgate
