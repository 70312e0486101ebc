// Package autosave persists the most recent edit-session state and offers
// it back after a process restart.
//
// Exactly one snapshot is retained at a time, in a single well-known slot;
// every save overwrites the previous one unconditionally. The snapshot
// carries a cheap signature of the source image, and a stored snapshot is
// only offered for restore when that signature matches the source the new
// session was opened with. A mismatched snapshot is not an error and is not
// deleted; it is simply not offered.
//
// # Fail-Soft Loading
//
// Autosave is a convenience, so loading never propagates a parse failure:
// an absent slot, a corrupt payload, or a snapshot violating the history
// invariants all load as "no snapshot". Only genuine storage I/O failures
// surface as errors, and the session layer logs those and keeps editing.
//
// # Wire Format
//
// Snapshots are JSON, zstd-compressed, stored as a single BLOB row in
// SQLite keyed by the slot name. MemoryStore holds the same compressed
// payload in memory for tests and callers without a durable path.
package autosave
