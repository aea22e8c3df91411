// Package middleware exposes HTTP middleware adapters for authgate.
//
// # Guards
//
//   - [Guard] — full authentication: denylist probe, then signature and
//     expiry verification, with the verified identity injected into the
//     request context.
//   - [DenyOnly] — revocation probe alone, for chains where signature
//     verification already happens elsewhere.
//
// Every authenticated route must sit behind a chain that consults the
// revocation registry before the request reaches the Engine's operations;
// both guards satisfy that contract.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine.Authenticate).
//   - Access Redis (the Engine and registry handle I/O).
//   - Make authorization decisions beyond pass/reject.
package middleware
