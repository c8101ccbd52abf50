// Package storage defines what the chain persists and the behavior required
// of any package providing that persistence.
package storage

import (
	"errors"

	"github.com/ardanlabs/fundme/foundation/blockchain/database"
	"github.com/ardanlabs/fundme/foundation/fundme/ledger"
	"github.com/ardanlabs/fundme/foundation/fundme/pricefeed"
)

// ErrNotFound is returned when nothing has been persisted yet.
var ErrNotFound = errors.New("snapshot not found")

// Store interface represents the behavior required to be implemented by any
// package providing support for persisting the chain. Commit must write the
// snapshot and the receipts together or not at all.
type Store interface {
	Commit(snapshot Snapshot, receipts ...database.Receipt) error
	LoadSnapshot() (Snapshot, error)
	Receipts() ([]database.Receipt, error)
	Reset() error
	Close() error
}

// =============================================================================

// Deployment records a contract that was deployed on the chain.
type Deployment struct {
	Name     string             `json:"name"`
	Contract string             `json:"contract"`
	Address  database.AccountID `json:"address"`
	Deployer database.AccountID `json:"deployer"`
}

// Snapshot is the full state of the chain after a committed call.
type Snapshot struct {
	Accounts    map[database.AccountID]database.Account    `json:"accounts"`
	Deployments []Deployment                               `json:"deployments"`
	Mocks       map[database.AccountID]pricefeed.MockState `json:"mocks,omitempty"`
	Ledgers     map[database.AccountID]ledger.State        `json:"ledgers,omitempty"`
}
