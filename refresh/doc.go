// Package refresh implements the rotating refresh-token engine.
//
// # Token format
//
// Refresh tokens are opaque base64url strings of 64 bytes of CSPRNG output.
// They carry no structure: ownership, expiry, and lifecycle state live in the
// backing [Store] record, keyed by the exact token string.
//
// # Lifecycle
//
// A token is ACTIVE from issuance until it is redeemed, revoked, or expires.
// All terminal states are deletion: the [Rotator] never leaves a redeemed or
// expired record behind. Redemption is single-use — [Store.Consume] must be
// an atomic delete-if-present, so that of two concurrent redemptions of the
// same token exactly one wins and the other observes [ErrNotFound].
//
// # What this package must NOT do
//
//   - Sign or parse access tokens; the orchestrator pairs the fresh refresh
//     token with an access token itself.
//   - Treat an expired presented token as redeemable: expiry is checked after
//     the atomic consume, so the expired record is destroyed and the caller
//     observes [ErrExpired].
package refresh
