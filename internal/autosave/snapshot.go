package autosave

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/copperline/imagesession/internal/history"
	"github.com/copperline/imagesession/internal/params"
)

// Slot is the well-known storage key for the single retained snapshot.
// The "one autosave at a time" behavior is this key convention, not a
// global: every store writes and reads this slot only.
const Slot = "most-recent"

// ErrPersistence wraps storage-layer failures (I/O, quota, serialization).
// Callers log it and keep editing; it never aborts a session.
var ErrPersistence = errors.New("autosave: persistence failure")

// Snapshot is the persisted record of an open session: the live parameters,
// the full undo/redo stack, and the signature of the source image the
// session was editing.
type Snapshot struct {
	SourceSignature string                `json:"source_signature"`
	Live            params.EditParameters `json:"live"`
	History         history.Record        `json:"history"`
	SavedAt         time.Time             `json:"saved_at"`
}

// Matches reports whether snap was taken against a source with the given
// signature. A nil snapshot never matches.
func Matches(snap *Snapshot, signature string) bool {
	return snap != nil && snap.SourceSignature == signature
}

// Store is the persistence port injected into a session. Implementations
// hold one mutable slot with single-write-wins semantics.
type Store interface {
	// Save serializes snap into the slot, overwriting any prior snapshot.
	Save(ctx context.Context, snap *Snapshot) error

	// Load returns the stored snapshot, or (nil, nil) when the slot is
	// empty or its contents are structurally invalid. Errors are reserved
	// for storage I/O failures.
	Load(ctx context.Context) (*Snapshot, error)
}

var (
	payloadEncoder, _ = zstd.NewWriter(nil)
	payloadDecoder, _ = zstd.NewReader(nil)
)

// encodePayload serializes a snapshot to its compressed wire form.
func encodePayload(snap *Snapshot) ([]byte, error) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal: %v", ErrPersistence, err)
	}
	return payloadEncoder.EncodeAll(raw, nil), nil
}

// decodePayload deserializes a compressed wire payload. Any structural
// problem returns (nil, nil): a corrupt autosave reads as absent.
func decodePayload(payload []byte) (*Snapshot, error) {
	raw, err := payloadDecoder.DecodeAll(payload, nil)
	if err != nil {
		return nil, nil
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, nil
	}
	if snap.SourceSignature == "" {
		return nil, nil
	}
	if err := snap.Live.Validate(); err != nil {
		return nil, nil
	}
	if _, err := history.FromRecord(snap.History); err != nil {
		return nil, nil
	}
	return &snap, nil
}
