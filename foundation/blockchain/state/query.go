package state

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ardanlabs/fundme/foundation/blockchain/database"
	"github.com/ardanlabs/fundme/foundation/blockchain/storage"
	"github.com/ardanlabs/fundme/foundation/fundme/gasreport"
	"github.com/ardanlabs/fundme/foundation/fundme/ledger"
	"github.com/ardanlabs/fundme/foundation/fundme/pricefeed"
)

// QueryAccount returns a copy of the external account.
func (s *State) QueryAccount(accountID database.AccountID) database.Account {
	return s.db.Query(accountID)
}

// QueryAccounts returns a copy of every external account on the chain.
func (s *State) QueryAccounts() map[database.AccountID]database.Account {
	return s.db.CopyAccounts()
}

// Balance returns the wei held at the address. For a FundMe ledger this
// is the balance of the contract.
func (s *State) Balance(address database.AccountID) *big.Int {
	s.mu.Lock()
	l, exists := s.ledgers[address]
	s.mu.Unlock()

	if exists {
		return l.Balance()
	}

	return s.db.Query(address).Balance
}

// Deployed reports whether a deployment with the name exists.
func (s *State) Deployed(name string) bool {
	_, err := s.Deployment(name)
	return err == nil
}

// Deployment returns the deployment recorded under the name.
func (s *State) Deployment(name string) (storage.Deployment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, dep := range s.deployments {
		if dep.Name == name {
			return dep, nil
		}
	}

	return storage.Deployment{}, fmt.Errorf("%w: %s", ErrNotDeployed, name)
}

// Deployments returns every deployment in the order they were made.
func (s *State) Deployments() []storage.Deployment {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]storage.Deployment(nil), s.deployments...)
}

// Ledger returns the FundMe ledger deployed at the address.
func (s *State) Ledger(address database.AccountID) (*ledger.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, exists := s.ledgers[address]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotDeployed, address)
	}

	return l, nil
}

// Mock returns the mock aggregator deployed at the address.
func (s *State) Mock(address database.AccountID) (*pricefeed.Mock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mock, exists := s.mocks[address]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotDeployed, address)
	}

	return mock, nil
}

// PriceFeed returns the oracle the ledger at the address prices
// contributions with.
func (s *State) PriceFeed(address database.AccountID) (pricefeed.Feed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, exists := s.ledgers[address]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotDeployed, address)
	}

	return s.feed(l.PriceFeed())
}

// Receipts returns every receipt recorded by the chain.
func (s *State) Receipts() ([]database.Receipt, error) {
	return s.storage.Receipts()
}

// GasReport prices the gas recorded so far. The token price comes from the
// oracle of the ledger at the address. A report without a token price is
// still produced when the oracle cannot answer.
func (s *State) GasReport(ctx context.Context, cfg gasreport.Config, address database.AccountID) gasreport.Report {
	var price *pricefeed.Price

	feed, err := s.PriceFeed(address)
	switch {
	case err != nil:
		s.evHandler("state: GasReport: price feed: WARNING: %s", err)

	default:
		p, err := feed.LatestPrice(ctx)
		if err != nil {
			s.evHandler("state: GasReport: latest price: WARNING: %s", err)
			break
		}
		price = &p
	}

	return s.reporter.Report(cfg, s.genesis.GasPrice, price)
}
