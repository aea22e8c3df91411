// Package pgstore implements [authgate.UserStore] and [refresh.Store] on
// PostgreSQL via pgx.
//
// The uniqueness and single-use guarantees that the orchestration layer can
// only check advisorily are enforced here by the database itself:
//
//   - users.email carries a UNIQUE constraint, so concurrent duplicate
//     sign-ups race into exactly one success and one
//     [authgate.ErrEmailExists].
//   - Consume is a single DELETE … RETURNING, so of two concurrent
//     redemptions of the same token exactly one receives the row.
//
// Expiry timestamps are stored as timestamptz; no textual round-trip is
// involved.
package pgstore
