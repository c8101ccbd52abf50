// Package database maintains the in memory database of the external
// accounts on the development chain. The balances here are what a caller
// observes from outside any contract.
package database

import (
	"errors"
	"fmt"
	"maps"
	"math/big"
	"sync"

	"github.com/ardanlabs/fundme/foundation/blockchain/genesis"
)

// Set of errors returned by the database.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("invalid amount")
)

// Database manages data related to accounts who have transacted on the chain.
type Database struct {
	mu sync.RWMutex

	genesis  genesis.Genesis
	accounts map[AccountID]Account
}

// New constructs a new database and applies account genesis information.
func New(gen genesis.Genesis) (*Database, error) {
	db := Database{
		genesis: gen,
	}

	if err := db.Reset(); err != nil {
		return nil, err
	}

	return &db, nil
}

// Reset re-initalizes the database back to the genesis state.
func (db *Database) Reset() error {
	accounts := make(map[AccountID]Account)
	for accountStr, balance := range db.genesis.Balances {
		accountID, err := ToAccountID(accountStr)
		if err != nil {
			return fmt.Errorf("genesis account %q: %w", accountStr, err)
		}
		accounts[accountID] = newAccount(accountID, balance)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	db.accounts = accounts

	return nil
}

// Replace swaps the full set of accounts, used when the chain is restored
// from a snapshot.
func (db *Database) Replace(accounts map[AccountID]Account) {
	cpy := make(map[AccountID]Account, len(accounts))
	for accountID, account := range accounts {
		account.AccountID = accountID
		cpy[accountID] = account.clone()
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	db.accounts = cpy
}

// CopyAccounts makes a copy of the current accounts in the database.
func (db *Database) CopyAccounts() map[AccountID]Account {
	db.mu.RLock()
	defer db.mu.RUnlock()

	accounts := make(map[AccountID]Account, len(db.accounts))
	for accountID, account := range db.accounts {
		accounts[accountID] = account.clone()
	}
	return accounts
}

// Query returns a copy of the specified account. Accounts that never
// transacted have a zero balance and nonce.
func (db *Database) Query(accountID AccountID) Account {
	db.mu.RLock()
	defer db.mu.RUnlock()

	account, exists := db.accounts[accountID]
	if !exists {
		return newAccount(accountID, new(big.Int))
	}

	return account.clone()
}

// Debit removes the amount from the account's balance.
func (db *Database) Debit(accountID AccountID, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	account := db.load(accountID)
	if account.Balance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: account %s, balance %s, needed %s", ErrInsufficientFunds, accountID, account.Balance, amount)
	}

	account.Balance.Sub(account.Balance, amount)
	db.accounts[accountID] = account

	return nil
}

// Credit adds the amount to the account's balance.
func (db *Database) Credit(accountID AccountID, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	account := db.load(accountID)
	account.Balance.Add(account.Balance, amount)
	db.accounts[accountID] = account

	return nil
}

// ValidateNonce checks the nonce is the next one expected for the account.
func (db *Database) ValidateNonce(accountID AccountID, nonce uint64) error {
	db.mu.RLock()
	defer db.mu.RUnlock()

	current := db.accounts[accountID].Nonce
	if nonce != current {
		return fmt.Errorf("invalid nonce, account %s, got %d, exp %d", accountID, nonce, current)
	}

	return nil
}

// IncrementNonce bumps the account's nonce and returns the value that was
// consumed.
func (db *Database) IncrementNonce(accountID AccountID) uint64 {
	db.mu.Lock()
	defer db.mu.Unlock()

	account := db.load(accountID)
	used := account.Nonce
	account.Nonce++
	db.accounts[accountID] = account

	return used
}

// Genesis returns a copy of the genesis used to construct the database.
func (db *Database) Genesis() genesis.Genesis {
	gen := db.genesis
	gen.Balances = maps.Clone(db.genesis.Balances)
	return gen
}

// load returns a private copy of the account for mutation. The caller
// must hold the write lock.
func (db *Database) load(accountID AccountID) Account {
	account, exists := db.accounts[accountID]
	if !exists {
		return newAccount(accountID, new(big.Int))
	}
	return account.clone()
}
