package history

import (
	"errors"
	"testing"

	"github.com/copperline/imagesession/internal/params"
)

func withRotation(deg int) params.EditParameters {
	p := params.Default()
	p.Rotation = deg
	return p
}

func withBrightness(v int) params.EditParameters {
	p := params.Default()
	p.Brightness = v
	return p
}

func TestNew(t *testing.T) {
	h := New()

	if h.Len() != 1 {
		t.Fatalf("Len: got %d, want 1", h.Len())
	}
	if h.Index() != 0 {
		t.Fatalf("Index: got %d, want 0", h.Index())
	}
	if h.Current() != params.Default() {
		t.Errorf("Current: got %+v, want default", h.Current())
	}
	if h.CanUndo() || h.CanRedo() {
		t.Error("fresh history should have nothing to undo or redo")
	}
}

func TestCommit_Grows(t *testing.T) {
	h := New()
	h.Commit(withRotation(90))

	if h.Len() != 2 || h.Index() != 1 {
		t.Errorf("after commit: len=%d index=%d, want 2/1", h.Len(), h.Index())
	}
	if h.Current() != withRotation(90) {
		t.Errorf("Current: got %+v", h.Current())
	}
}

func TestCommit_DuplicateIsNoOp(t *testing.T) {
	h := New()
	h.Commit(withRotation(90))

	// Same value again: length and index must not change.
	h.Commit(withRotation(90))
	if h.Len() != 2 || h.Index() != 1 {
		t.Errorf("duplicate commit changed state: len=%d index=%d", h.Len(), h.Index())
	}

	// Committing the current default on a fresh stack is also a no-op.
	h2 := New()
	h2.Commit(params.Default())
	if h2.Len() != 1 {
		t.Errorf("committing the default on a fresh stack grew history to %d", h2.Len())
	}
}

func TestUndoRedo_RoundTrip(t *testing.T) {
	h := New()
	h.Commit(withRotation(90))
	h.Commit(withRotation(180))
	before := h.Current()

	if _, err := h.Undo(); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	got, err := h.Redo()
	if err != nil {
		t.Fatalf("Redo failed: %v", err)
	}
	if got != before {
		t.Errorf("undo/redo round trip: got %+v, want %+v", got, before)
	}
}

func TestUndo_AtBottom(t *testing.T) {
	h := New()
	got, err := h.Undo()
	if !errors.Is(err, ErrNoOp) {
		t.Fatalf("Undo at bottom: got err %v, want ErrNoOp", err)
	}
	if got != params.Default() {
		t.Errorf("Undo at bottom returned %+v, want unchanged default", got)
	}
	if h.Index() != 0 || h.Len() != 1 {
		t.Error("failed Undo must leave state unchanged")
	}
}

func TestRedo_AtTop(t *testing.T) {
	h := New()
	h.Commit(withRotation(90))
	if _, err := h.Redo(); !errors.Is(err, ErrNoOp) {
		t.Fatalf("Redo at top: got err %v, want ErrNoOp", err)
	}
}

func TestCommit_TruncatesRedoBranch(t *testing.T) {
	h := New()
	h.Commit(withRotation(90))
	h.Commit(withRotation(180))
	if _, err := h.Undo(); err != nil {
		t.Fatal(err)
	}

	// Commit from the middle: the 180 entry must be gone.
	h.Commit(withBrightness(150))

	if h.Len() != 3 {
		t.Errorf("Len after branch commit: got %d, want 3", h.Len())
	}
	if _, err := h.Redo(); !errors.Is(err, ErrNoOp) {
		t.Errorf("Redo after branch commit: got err %v, want ErrNoOp", err)
	}
}

func TestReset(t *testing.T) {
	h := New()
	h.Commit(withRotation(90))
	h.Commit(withBrightness(40))
	h.Reset()

	if h.Len() != 1 || h.Index() != 0 {
		t.Errorf("after Reset: len=%d index=%d, want 1/0", h.Len(), h.Index())
	}
	if h.Current() != params.Default() {
		t.Errorf("after Reset: current=%+v, want default", h.Current())
	}
}

// TestEditScenario walks the rotate / crop / undo / redo sequence end to end
// and checks that history length stays pinned once the entries exist.
func TestEditScenario(t *testing.T) {
	h := New()

	h.Commit(withRotation(90))
	if h.Len() != 2 {
		t.Fatalf("after rotate: len=%d, want 2", h.Len())
	}

	cropped := withRotation(90)
	cropped.CropRatio = params.CropSquare
	h.Commit(cropped)
	if h.Len() != 3 {
		t.Fatalf("after crop: len=%d, want 3", h.Len())
	}

	if _, err := h.Undo(); err != nil {
		t.Fatal(err)
	}
	cur, err := h.Undo()
	if err != nil {
		t.Fatal(err)
	}
	if cur != params.Default() || h.Index() != 0 {
		t.Errorf("after two undos: current=%+v index=%d, want default/0", cur, h.Index())
	}

	cur, err = h.Redo()
	if err != nil {
		t.Fatal(err)
	}
	if cur != withRotation(90) || h.Index() != 1 {
		t.Errorf("after redo: current=%+v index=%d, want rotation=90/1", cur, h.Index())
	}

	if h.Len() != 3 {
		t.Errorf("final length: got %d, want 3 (undo/redo must not shrink the stack)", h.Len())
	}
}

func TestRecord_RoundTrip(t *testing.T) {
	h := New()
	h.Commit(withRotation(90))
	h.Commit(withBrightness(120))
	if _, err := h.Undo(); err != nil {
		t.Fatal(err)
	}

	rec := h.Record()
	restored, err := FromRecord(rec)
	if err != nil {
		t.Fatalf("FromRecord failed: %v", err)
	}

	if restored.Len() != h.Len() || restored.Index() != h.Index() {
		t.Errorf("restored shape: len=%d index=%d, want %d/%d",
			restored.Len(), restored.Index(), h.Len(), h.Index())
	}
	if restored.Current() != h.Current() {
		t.Errorf("restored current: got %+v, want %+v", restored.Current(), h.Current())
	}

	// The record must not alias the live stack: commits on the restored
	// history may not leak into the original's entries.
	restored.Commit(withRotation(270))
	if h.Current() != withRotation(90) {
		t.Errorf("mutating the restored history moved the original: current=%+v", h.Current())
	}
	if got := h.Record().Entries[2]; got != withBrightness(120) {
		t.Errorf("mutating the restored history rewrote the original's entries: got %+v", got)
	}
}

func TestFromRecord_Invalid(t *testing.T) {
	valid := New()
	valid.Commit(withRotation(90))

	tests := []struct {
		name string
		rec  Record
	}{
		{"empty", Record{}},
		{"index negative", Record{Entries: valid.Record().Entries, Index: -1}},
		{"index past end", Record{Entries: valid.Record().Entries, Index: 2}},
		{"first entry not default", Record{Entries: []params.EditParameters{withRotation(90)}, Index: 0}},
		{"invalid entry", Record{
			Entries: []params.EditParameters{params.Default(), {Brightness: 999, Contrast: 100, CropRatio: params.CropOriginal}},
			Index:   1,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromRecord(tt.rec); err == nil {
				t.Error("FromRecord should reject invalid record")
			}
		})
	}
}
