// Package audit provides the audit entry model, pluggable sinks, and an
// asynchronous dispatcher with bounded buffering.
//
// Every terminal decision of the engine produces exactly one [Entry]. Sinks
// receive entries off the hot path; when the buffer is full and DropIfFull is
// set, entries are counted as dropped rather than blocking the request.
//
// # What this package must NOT do
//
//   - Import faceid or the session store (no upward imports).
//   - Mutate or re-emit an entry after it has been handed to a sink.
package audit
