// Package session implements the edit-session orchestrator: the state
// machine that owns the live edit parameters, the undo/redo history, the
// autosave schedule, and the final render.
//
// # States
//
// A session is in exactly one of four states:
//
//   - Editing: the default. Live parameters are mutable; previews update on
//     every change.
//   - RestoreAvailable: entered at construction when a stored autosave
//     matches the source image. Exits back to Editing either when the
//     caller applies the restore or when any edit forfeits the offer.
//   - Applying: the composition pipeline is (or has finished) baking the
//     live parameters into the output. No further edits are accepted.
//   - Cancelled: the session was discarded without producing output.
//
// # Preview Versus Commit
//
// Continuous gestures (brightness and contrast drags) are split into two
// explicit operations: PreviewBrightness/PreviewContrast update the live
// state without touching history, and CommitBrightness/CommitContrast push
// the live state as one history entry at gesture end. Discrete actions
// (Rotate, SetCropRatio) commit immediately. This keeps a drag from
// flooding the undo stack while still re-rendering the preview on every
// intermediate value.
//
// # Autosave
//
// Every mutation restarts a debounced autosave; the write happens after a
// quiet period with no further changes. Storage failures are logged and
// never interrupt editing. Close and Cancel stop the schedule, and a fire
// that slips past the stop is gated on the session's own teardown flag, so
// no snapshot is written for a session that has ended.
package session
