// Package match implements descriptor validation and Euclidean nearest-neighbor
// matching for face descriptors.
//
// # Architecture boundaries
//
// This package owns the [Descriptor] value type and all similarity math. It is
// pure: no I/O, no clock, no randomness. Decision policy (thresholds, attempt
// budgets, audit) belongs to the Engine.
//
// # What this package must NOT do
//
//   - Import faceid or any store package (no upward imports).
//   - Log, emit audit events, or touch Redis.
//   - Coerce malformed input silently; every violation is an explicit error.
package match
