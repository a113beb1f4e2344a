// Package session provides Redis-backed persistence for per-client session
// state and a compact binary encoding for it.
//
// A [Session] carries everything the engine tracks per browser/client:
// the pending-verification flag set after a password login, the bounded
// verification attempt counter, and the standalone face-login rate state
// (attempt counter plus last-attempt timestamp).
//
// # Binary encoding
//
// Sessions are stored as a versioned binary blob. The encoder is
// append-only: new versions add fields but never reinterpret old ones.
//
// # Atomicity
//
// Counter updates go through WATCH transactions so that concurrent
// read-modify-write cycles on the same session never corrupt the stored
// value. The counters are advisory rate limiting, not a security boundary;
// a double-submit may still consume a single attempt twice.
//
// # What this package must NOT do
//
//   - Import faceid (no upward imports).
//   - Apply matching policy; it stores state, the Engine decides.
package session
