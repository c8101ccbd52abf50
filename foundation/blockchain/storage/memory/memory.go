// Package memory implements the ability to persist the chain in memory.
// It is used by tests and by nodes that don't need to survive a restart.
package memory

import (
	"encoding/json"
	"sync"

	"github.com/ardanlabs/fundme/foundation/blockchain/database"
	"github.com/ardanlabs/fundme/foundation/blockchain/storage"
)

// Memory represents the storage implementation for keeping the chain in
// memory. This implements the storage.Store interface.
type Memory struct {
	mu       sync.RWMutex
	snapshot []byte
	receipts []database.Receipt
}

// New constructs a Memory value for use.
func New() *Memory {
	return &Memory{}
}

// Close in this implementation has nothing to do since everything
// is in memory.
func (m *Memory) Close() error {
	return nil
}

// Commit stores the snapshot and appends the receipts. The snapshot is
// kept encoded so later changes by the caller can't leak in.
func (m *Memory) Commit(snapshot storage.Snapshot, receipts ...database.Receipt) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.snapshot = data
	m.receipts = append(m.receipts, receipts...)

	return nil
}

// LoadSnapshot returns the last committed snapshot.
func (m *Memory) LoadSnapshot() (storage.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.snapshot == nil {
		return storage.Snapshot{}, storage.ErrNotFound
	}

	var snapshot storage.Snapshot
	if err := json.Unmarshal(m.snapshot, &snapshot); err != nil {
		return storage.Snapshot{}, err
	}

	return snapshot, nil
}

// Receipts returns the receipts in the order they were committed.
func (m *Memory) Receipts() ([]database.Receipt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]database.Receipt(nil), m.receipts...), nil
}

// Reset will clear out the chain.
func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snapshot = nil
	m.receipts = nil

	return nil
}
