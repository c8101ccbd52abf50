// Package state is the core API for the development chain and implements
// the rules for deploying contracts and executing calls against them.
package state

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/fundme/foundation/blockchain/database"
	"github.com/ardanlabs/fundme/foundation/blockchain/genesis"
	"github.com/ardanlabs/fundme/foundation/blockchain/storage"
	"github.com/ardanlabs/fundme/foundation/fundme/gasreport"
	"github.com/ardanlabs/fundme/foundation/fundme/ledger"
	"github.com/ardanlabs/fundme/foundation/fundme/pricefeed"
)

// Names of the contracts the chain knows how to deploy.
const (
	ContractFundMe           = "FundMe"
	ContractMockV3Aggregator = "MockV3Aggregator"
)

// Set of errors returned by the state.
var (
	ErrNotDeployed   = errors.New("contract not deployed")
	ErrUnknownMethod = errors.New("unknown method")
	ErrNonPayable    = errors.New("method is not payable")
	ErrReverted      = errors.New("execution reverted")
	ErrStorage       = errors.New("storage failure")
)

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of calls and deployments.
type EventHandler func(v string, args ...any)

// FeedResolver returns the oracle living at the specified address when it
// is not a mock deployed on this chain.
type FeedResolver func(address database.AccountID) (pricefeed.Feed, error)

// Config represents the configuration required to start the chain.
type Config struct {
	Genesis     genesis.Genesis
	Storage     storage.Store
	Reporter    *gasreport.Reporter
	ResolveFeed FeedResolver
	EvHandler   EventHandler
}

// State manages the development chain.
type State struct {
	mu sync.Mutex

	genesis     genesis.Genesis
	storage     storage.Store
	reporter    *gasreport.Reporter
	resolveFeed FeedResolver
	evHandler   EventHandler

	db          *database.Database
	deployments []storage.Deployment
	mocks       map[database.AccountID]*pricefeed.Mock
	ledgers     map[database.AccountID]*ledger.Ledger
}

// New constructs the chain and restores whatever was last persisted in
// the store.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if cfg.Storage == nil {
		return nil, errors.New("storage is required")
	}

	reporter := cfg.Reporter
	if reporter == nil {
		reporter = gasreport.New()
	}

	// Create a new database to manage the external accounts and apply
	// the genesis balances.
	db, err := database.New(cfg.Genesis)
	if err != nil {
		return nil, err
	}

	state := State{
		genesis:     cfg.Genesis,
		storage:     cfg.Storage,
		reporter:    reporter,
		resolveFeed: cfg.ResolveFeed,
		evHandler:   ev,

		db:      db,
		mocks:   make(map[database.AccountID]*pricefeed.Mock),
		ledgers: make(map[database.AccountID]*ledger.Ledger),
	}

	snapshot, err := cfg.Storage.LoadSnapshot()
	switch {
	case errors.Is(err, storage.ErrNotFound):
		ev("state: New: starting from genesis: chainID[%d]", cfg.Genesis.ChainID)
		return &state, nil

	case err != nil:
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}

	if err := state.restore(snapshot); err != nil {
		return nil, fmt.Errorf("restoring snapshot: %w", err)
	}

	ev("state: New: restored: deployments[%d] accounts[%d]", len(state.deployments), len(snapshot.Accounts))

	return &state, nil
}

// Shutdown cleanly brings the chain down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.storage.Close()
}

// Reset drops every deployment and returns the accounts to genesis.
func (s *State) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Reset(); err != nil {
		return err
	}

	if err := s.db.Reset(); err != nil {
		return err
	}

	s.deployments = nil
	s.mocks = make(map[database.AccountID]*pricefeed.Mock)
	s.ledgers = make(map[database.AccountID]*ledger.Ledger)

	s.evHandler("state: Reset: chain reset to genesis")

	return nil
}

// Genesis returns a copy of the genesis information.
func (s *State) Genesis() genesis.Genesis {
	return s.db.Genesis()
}

// =============================================================================

// snapshot captures the full chain. The caller must hold the lock.
func (s *State) snapshot() storage.Snapshot {
	mocks := make(map[database.AccountID]pricefeed.MockState, len(s.mocks))
	for address, mock := range s.mocks {
		mocks[address] = mock.State()
	}

	ledgers := make(map[database.AccountID]ledger.State, len(s.ledgers))
	for address, l := range s.ledgers {
		ledgers[address] = l.Snapshot()
	}

	return storage.Snapshot{
		Accounts:    s.db.CopyAccounts(),
		Deployments: append([]storage.Deployment(nil), s.deployments...),
		Mocks:       mocks,
		Ledgers:     ledgers,
	}
}

// restore rebuilds the chain from a snapshot. Mocks are restored first so
// ledgers deployed against them find their oracle.
func (s *State) restore(snapshot storage.Snapshot) error {
	s.db.Replace(snapshot.Accounts)

	for address, ms := range snapshot.Mocks {
		s.mocks[address] = pricefeed.RestoreMock(ms)
	}

	for address, ls := range snapshot.Ledgers {
		oracle, err := s.feed(ls.PriceFeed)
		if err != nil {
			return fmt.Errorf("ledger %s: %w", address, err)
		}

		l, err := ledger.Restore(ls, oracle)
		if err != nil {
			return fmt.Errorf("ledger %s: %w", address, err)
		}
		s.ledgers[address] = l
	}

	s.deployments = append([]storage.Deployment(nil), snapshot.Deployments...)

	return nil
}

// rollback returns the chain to a snapshot taken before a deployment or
// call whose changes could not be committed. The caller must hold the lock.
func (s *State) rollback(snapshot storage.Snapshot) error {
	s.mocks = make(map[database.AccountID]*pricefeed.Mock)
	s.ledgers = make(map[database.AccountID]*ledger.Ledger)

	if err := s.restore(snapshot); err != nil {
		s.evHandler("state: rollback: ERROR: %s", err)
		return fmt.Errorf("rolling back: %w", err)
	}

	return nil
}

// feed returns the oracle at the specified address. A mock deployed on this
// chain wins over the resolver. The caller must hold the lock.
func (s *State) feed(address database.AccountID) (pricefeed.Feed, error) {
	if mock, exists := s.mocks[address]; exists {
		return mock, nil
	}

	if s.resolveFeed == nil {
		return nil, fmt.Errorf("no price feed at %s", address)
	}

	return s.resolveFeed(address)
}
