// Package faceid provides a biometric face-verification and face-login engine:
// enrollment of face descriptors, a 1:1 verification step after password login,
// and a standalone 1:N face login, with per-session rate limiting and audit
// logging of every decision.
//
// Descriptors are fixed-length 128-element feature vectors produced by an
// external recognition model; this package never captures images and never
// performs liveness detection. Matching is a plain Euclidean nearest-neighbor
// search against a fixed threshold.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// faceid is the public surface. It exposes [Engine], [Builder], [Config], and
// value types (VerifyResult, FaceLoginResult, AuditEntry). Matching math,
// session encoding, and audit dispatch live under internal/ and session/ and
// are never interpreted by callers.
//
// # What this package must NOT do
//
//   - Reveal computed distances in caller-visible results; distances appear
//     only in audit entries.
//   - Identify the nearest non-matching candidate of a failed 1:N login.
//   - Store plaintext biometric material anywhere but the caller-supplied
//     identity provider.
package faceid
