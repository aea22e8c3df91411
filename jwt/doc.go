// Package jwt issues and parses the signed access tokens used by authgate.
//
// Access tokens are HS256-signed bearer credentials carrying the subject id,
// email, and display name of the authenticated user, bounded by an absolute
// expiry. They are never persisted server-side: validity is signature +
// expiry + absence from the revocation denylist, and the last of those is
// checked outside this package.
//
// # What this package must NOT do
//
//   - Accept any signing algorithm other than the configured one (no
//     alg-confusion downgrades).
//   - Perform I/O. Claim construction and signing are pure functions of the
//     configuration, the input user, and the clock.
package jwt
