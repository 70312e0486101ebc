// Package history implements the linear undo/redo stack over edit-parameter
// snapshots.
//
// A History is an ordered sequence of params.EditParameters values plus an
// index into that sequence. Three invariants hold at all times:
//
//   - 0 <= index < len(entries)
//   - entries[0] is the default edit state
//   - committing while the index is not at the end discards every entry
//     after the index before appending (the redo branch is destroyed)
//
// A commit whose snapshot equals the current entry is a no-op: the stack
// never stores two identical adjacent states, so a drag that ends where it
// started does not grow the history.
//
// Undo and redo at a boundary return ErrNoOp. Callers treat that as a
// recoverable condition, not a failure.
package history

import (
	"errors"
	"fmt"

	"github.com/copperline/imagesession/internal/params"
)

// ErrNoOp is returned by Undo at the bottom of the stack and Redo at the
// top. The state is unchanged when it is returned.
var ErrNoOp = errors.New("history: nothing to undo or redo")

// History is a linear undo/redo stack. It is not safe for concurrent use;
// the owning session serializes access.
type History struct {
	entries []params.EditParameters
	index   int
}

// New creates a history containing the single default entry.
func New() *History {
	return &History{
		entries: []params.EditParameters{params.Default()},
		index:   0,
	}
}

// Commit appends candidate as the new current entry.
//
// If candidate equals the current entry, Commit does nothing and history
// length is unchanged. Otherwise any redo branch beyond the current index
// is truncated first, then candidate is appended and the index moves to it.
func (h *History) Commit(candidate params.EditParameters) {
	if candidate == h.entries[h.index] {
		return
	}
	h.entries = append(h.entries[:h.index+1], candidate)
	h.index = len(h.entries) - 1
}

// Undo steps back one entry and returns the new current value.
// At the bottom of the stack it returns ErrNoOp and leaves state unchanged.
func (h *History) Undo() (params.EditParameters, error) {
	if h.index == 0 {
		return h.entries[h.index], ErrNoOp
	}
	h.index--
	return h.entries[h.index], nil
}

// Redo steps forward one entry and returns the new current value.
// At the top of the stack it returns ErrNoOp and leaves state unchanged.
func (h *History) Redo() (params.EditParameters, error) {
	if h.index == len(h.entries)-1 {
		return h.entries[h.index], ErrNoOp
	}
	h.index++
	return h.entries[h.index], nil
}

// Current returns the entry at the index. It never fails.
func (h *History) Current() params.EditParameters {
	return h.entries[h.index]
}

// Reset replaces the stack with a single default entry.
func (h *History) Reset() {
	h.entries = []params.EditParameters{params.Default()}
	h.index = 0
}

// Len returns the number of entries in the stack.
func (h *History) Len() int { return len(h.entries) }

// Index returns the position of the current entry.
func (h *History) Index() int { return h.index }

// CanUndo reports whether Undo would succeed.
func (h *History) CanUndo() bool { return h.index > 0 }

// CanRedo reports whether Redo would succeed.
func (h *History) CanRedo() bool { return h.index < len(h.entries)-1 }

// Record is the serializable form of a History, used by the autosave
// snapshot.
type Record struct {
	Entries []params.EditParameters `json:"entries"`
	Index   int                     `json:"index"`
}

// Record returns a copy of the stack in serializable form. The copy does
// not alias the history's backing array.
func (h *History) Record() Record {
	entries := make([]params.EditParameters, len(h.entries))
	copy(entries, h.entries)
	return Record{Entries: entries, Index: h.index}
}

// FromRecord reconstructs a History from its serialized form.
//
// It validates the stack invariants so that a corrupt or hand-edited
// autosave payload is rejected whole rather than partially applied:
// the record must be non-empty, the index must be in range, the first
// entry must be the default state, and every entry must validate.
func FromRecord(r Record) (*History, error) {
	if len(r.Entries) == 0 {
		return nil, fmt.Errorf("history: record has no entries")
	}
	if r.Index < 0 || r.Index >= len(r.Entries) {
		return nil, fmt.Errorf("history: record index %d out of range [0,%d)", r.Index, len(r.Entries))
	}
	if r.Entries[0] != params.Default() {
		return nil, fmt.Errorf("history: record does not start at the default state")
	}
	for i, e := range r.Entries {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("history: record entry %d: %w", i, err)
		}
	}

	entries := make([]params.EditParameters, len(r.Entries))
	copy(entries, r.Entries)
	return &History{entries: entries, index: r.Index}, nil
}
