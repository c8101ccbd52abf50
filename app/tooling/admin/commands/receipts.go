package commands

import (
	"fmt"
	"io"

	"github.com/ardanlabs/fundme/foundation/blockchain/storage"
	"github.com/ardanlabs/fundme/foundation/fundme/units"
)

// Receipts writes the receipts stored for the chain in the order they were
// committed. An empty account prints all of them.
func Receipts(w io.Writer, account string, store storage.Store) error {
	rcts, err := store.Receipts()
	if err != nil {
		return err
	}

	accountID, err := filter(account)
	if err != nil {
		return err
	}

	for _, rct := range rcts {
		if accountID != "" && rct.From != accountID && rct.To != accountID && rct.ContractAddress != accountID {
			continue
		}

		method := rct.Method
		if method == "" {
			method = "receive"
		}

		fmt.Fprintf(w, "Tx: %s  From: %s  Nonce: %d  Method: %s  Value: %s ETH  Gas: %d  Status: %d %s\n",
			rct.TxHash, rct.From, rct.Nonce, method, units.FormatEther(rct.Value), rct.GasUsed, rct.Status, rct.Error)
	}

	return nil
}
