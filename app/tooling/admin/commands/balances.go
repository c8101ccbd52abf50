// Package commands contains the functionality for the set of commands
// currently supported by the admin tool.
package commands

import (
	"fmt"
	"io"
	"sort"

	"github.com/ardanlabs/fundme/foundation/blockchain/database"
	"github.com/ardanlabs/fundme/foundation/blockchain/storage"
	"github.com/ardanlabs/fundme/foundation/fundme/units"
)

// Balances writes the accounts and contract balances held in the last
// snapshot. An empty account prints all of them.
func Balances(w io.Writer, account string, store storage.Store) error {
	snap, err := store.LoadSnapshot()
	if err != nil {
		return err
	}

	accountID, err := filter(account)
	if err != nil {
		return err
	}

	accounts := make([]database.Account, 0, len(snap.Accounts))
	for _, act := range snap.Accounts {
		if accountID != "" && act.AccountID != accountID {
			continue
		}
		accounts = append(accounts, act)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].AccountID < accounts[j].AccountID })

	for _, act := range accounts {
		fmt.Fprintf(w, "Account: %s  Nonce: %d  Balance: %s ETH\n", act.AccountID, act.Nonce, units.FormatEther(act.Balance))
	}

	for _, dep := range snap.Deployments {
		if accountID != "" && dep.Address != accountID {
			continue
		}

		if l, exists := snap.Ledgers[dep.Address]; exists {
			fmt.Fprintf(w, "Contract: %s  %s  Balance: %s ETH  Funders: %d\n", dep.Address, dep.Name, units.FormatEther(l.Balance), len(l.Funders))
			continue
		}
		fmt.Fprintf(w, "Contract: %s  %s\n", dep.Address, dep.Name)
	}

	return nil
}

// filter normalizes the account a command is restricted to.
func filter(account string) (database.AccountID, error) {
	if account == "" {
		return "", nil
	}

	return database.ToAccountID(account)
}
