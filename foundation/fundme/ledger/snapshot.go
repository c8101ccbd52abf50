package ledger

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ardanlabs/fundme/foundation/blockchain/database"
	"github.com/ardanlabs/fundme/foundation/fundme/pricefeed"
)

// State is the persisted form of a ledger.
type State struct {
	Owner      database.AccountID              `json:"owner"`
	PriceFeed  database.AccountID              `json:"price_feed"`
	MinimumUSD *big.Int                        `json:"minimum_usd"`
	Funded     map[database.AccountID]*big.Int `json:"funded"`
	Funders    []database.AccountID            `json:"funders"`
	Balance    *big.Int                        `json:"balance"`
}

// Snapshot captures the ledger so it can be persisted.
func (l *Ledger) Snapshot() State {
	l.mu.RLock()
	defer l.mu.RUnlock()

	funded := make(map[database.AccountID]*big.Int, len(l.funded))
	for accountID, amount := range l.funded {
		funded[accountID] = new(big.Int).Set(amount)
	}

	return State{
		Owner:      l.owner,
		PriceFeed:  l.priceFeed,
		MinimumUSD: new(big.Int).Set(l.minimumUSD),
		Funded:     funded,
		Funders:    append([]database.AccountID(nil), l.funders...),
		Balance:    new(big.Int).Set(l.balance),
	}
}

// Restore constructs a ledger from a previously captured state. The
// oracle is not part of the state and must be provided again.
func Restore(state State, oracle pricefeed.Feed) (*Ledger, error) {
	l, err := New(Config{
		Owner:      state.Owner,
		PriceFeed:  state.PriceFeed,
		Oracle:     oracle,
		MinimumUSD: state.MinimumUSD,
	})
	if err != nil {
		return nil, err
	}

	if state.Balance == nil {
		return nil, errors.New("restoring ledger: balance is required")
	}

	sum := new(big.Int)
	for accountID, amount := range state.Funded {
		l.funded[accountID] = new(big.Int).Set(amount)
		sum.Add(sum, amount)
	}

	if sum.Cmp(state.Balance) != 0 {
		return nil, fmt.Errorf("restoring ledger: contributions %s do not match balance %s", sum, state.Balance)
	}

	l.funders = append([]database.AccountID(nil), state.Funders...)
	l.balance = new(big.Int).Set(state.Balance)

	return l, nil
}
