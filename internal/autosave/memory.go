package autosave

import (
	"context"
	"sync"
)

// MemoryStore keeps the slot in process memory. It serializes through the
// same wire format as SQLiteStore, so corrupt-payload behavior is shared.
type MemoryStore struct {
	mu      sync.Mutex
	payload []byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save overwrites the slot with snap.
func (m *MemoryStore) Save(_ context.Context, snap *Snapshot) error {
	payload, err := encodePayload(snap)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.payload = payload
	m.mu.Unlock()
	return nil
}

// Load returns the stored snapshot, or (nil, nil) when the slot is empty
// or holds an invalid payload.
func (m *MemoryStore) Load(_ context.Context) (*Snapshot, error) {
	m.mu.Lock()
	payload := m.payload
	m.mu.Unlock()

	if payload == nil {
		return nil, nil
	}
	snap, _ := decodePayload(payload)
	return snap, nil
}

// Corrupt replaces the stored payload with raw bytes, bypassing the wire
// format. Test hook for fail-soft loading.
func (m *MemoryStore) Corrupt(raw []byte) {
	m.mu.Lock()
	m.payload = raw
	m.mu.Unlock()
}
