// Package password implements one-way password hashing and verification on
// top of bcrypt.
//
// # Output format
//
// Digests are self-describing bcrypt strings:
//
//	$2a$<cost>$<22-char salt><31-char hash>
//
// Algorithm, cost, and salt are embedded in the digest, so [Hasher.Verify]
// needs no configuration beyond the stored string itself.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. Credential lookup and the
// invalid-credentials error shape are the Engine's responsibility.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords — callers supply plaintext and receive digests.
//   - Import any other authgate package.
//   - Surface a malformed stored digest as anything other than a failed match.
package password
