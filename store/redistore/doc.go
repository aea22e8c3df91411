// Package redistore implements [refresh.Store] on Redis.
//
// # Key layout
//
//	<prefix>:rt:<value>    — JSON-encoded token record
//	<prefix>:user:<userID> — set of opaque values owned by the user
//
// # Atomicity
//
// Consume runs as a single Lua script, so delete-if-present and the
// user-index update are one atomic step: of two concurrent consumers of the
// same value exactly one receives the record. DeleteByUser is likewise one
// script, counting only the records it actually removed.
package redistore
