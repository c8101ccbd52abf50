// Package ledger implements the FundMe funding ledger. It accepts
// contributions worth at least a minimum amount in the reference currency
// and lets only its owner withdraw what was collected.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ardanlabs/fundme/foundation/blockchain/database"
	"github.com/ardanlabs/fundme/foundation/fundme/pricefeed"
)

// Set of errors the ledger can return. No state changes when any of these
// are returned.
var (
	ErrInsufficientContribution = errors.New("you need to spend more ETH")
	ErrNotOwner                 = errors.New("FundMe__NotOwner")
	ErrIndexOutOfRange          = errors.New("funder index out of range")
)

// TransferFunc moves wei out of the ledger to the specified account. The
// ledger only clears its records after the transfer succeeds.
type TransferFunc func(to database.AccountID, amount *big.Int) error

// Config represents the values needed to construct a ledger.
type Config struct {
	Owner      database.AccountID
	PriceFeed  database.AccountID
	Oracle     pricefeed.Feed
	MinimumUSD *big.Int
}

// Ledger holds the contributions made since the last withdrawal.
type Ledger struct {
	mu         sync.RWMutex
	owner      database.AccountID
	priceFeed  database.AccountID
	oracle     pricefeed.Feed
	minimumUSD *big.Int

	funded  map[database.AccountID]*big.Int
	funders []database.AccountID
	balance *big.Int
}

// New constructs an empty ledger owned by the configured owner.
func New(cfg Config) (*Ledger, error) {
	if !cfg.Owner.IsAccountID() {
		return nil, fmt.Errorf("invalid owner %q", cfg.Owner)
	}

	if cfg.Oracle == nil {
		return nil, errors.New("price feed oracle is required")
	}

	minimumUSD := cfg.MinimumUSD
	if minimumUSD == nil {
		minimumUSD = USD(50)
	}

	l := Ledger{
		owner:      cfg.Owner,
		priceFeed:  cfg.PriceFeed,
		oracle:     cfg.Oracle,
		minimumUSD: new(big.Int).Set(minimumUSD),
		funded:     make(map[database.AccountID]*big.Int),
		balance:    new(big.Int),
	}

	return &l, nil
}

// Fund records a contribution from the caller. The amount must be worth at
// least the minimum in the reference currency at the current oracle price.
func (l *Ledger) Fund(ctx context.Context, caller database.AccountID, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("%w: invalid amount", ErrInsufficientContribution)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	usd, err := ConversionRate(ctx, amount, l.oracle)
	if err != nil {
		return err
	}

	if usd.Cmp(l.minimumUSD) < 0 {
		return ErrInsufficientContribution
	}

	current, exists := l.funded[caller]
	if !exists || current.Sign() == 0 {
		current = new(big.Int)
		l.funders = append(l.funders, caller)
	}

	l.funded[caller] = new(big.Int).Add(current, amount)
	l.balance.Add(l.balance, amount)

	return nil
}

// Withdraw transfers the full balance to the owner and resets the
// contributions of every funder. Only the owner can withdraw. The amount
// transferred is returned.
func (l *Ledger) Withdraw(caller database.AccountID, transfer TransferFunc) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller != l.owner {
		return nil, ErrNotOwner
	}

	amount := new(big.Int).Set(l.balance)
	if err := transfer(l.owner, amount); err != nil {
		return nil, fmt.Errorf("transfer to owner: %w", err)
	}

	for _, funder := range l.funders {
		l.funded[funder] = new(big.Int)
	}
	l.funders = nil
	l.balance = new(big.Int)

	return amount, nil
}

// =============================================================================

// PriceFeed returns the address of the oracle the ledger reads.
func (l *Ledger) PriceFeed() database.AccountID {
	return l.priceFeed
}

// Owner returns the account allowed to withdraw.
func (l *Ledger) Owner() database.AccountID {
	return l.owner
}

// MinimumUSD returns the threshold in the 18 decimal reference form.
func (l *Ledger) MinimumUSD() *big.Int {
	return new(big.Int).Set(l.minimumUSD)
}

// AddressToAmountFunded returns what the account contributed since the
// last withdrawal.
func (l *Ledger) AddressToAmountFunded(accountID database.AccountID) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	amount, exists := l.funded[accountID]
	if !exists {
		return new(big.Int)
	}

	return new(big.Int).Set(amount)
}

// Funder returns the funder at the specified position in the list.
func (l *Ledger) Funder(index int) (database.AccountID, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if index < 0 || index >= len(l.funders) {
		return "", fmt.Errorf("%w: index %d, funders %d", ErrIndexOutOfRange, index, len(l.funders))
	}

	return l.funders[index], nil
}

// Funders returns a copy of the funder list.
func (l *Ledger) Funders() []database.AccountID {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return append([]database.AccountID(nil), l.funders...)
}

// Balance returns the wei held by the ledger.
func (l *Ledger) Balance() *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return new(big.Int).Set(l.balance)
}
