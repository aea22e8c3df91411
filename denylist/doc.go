// Package denylist implements the access-token revocation registry.
//
// Revocation is a TTL-bounded set-membership check over Redis: the raw
// access-token string is the key, the value is a presence marker, and the
// TTL equals the token's remaining validity at the moment of revocation.
// Entries disappear on their own when the token would have expired anyway,
// so the registry needs no cleanup pass.
//
// The transport boundary must probe [Registry.IsDenied] on every
// authenticated request before the request reaches the orchestrator;
// [middleware.Guard] does this for net/http servers. This package only
// provides the primitive.
package denylist
