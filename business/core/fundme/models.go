package fundme

import (
	"math/big"

	"github.com/ardanlabs/fundme/foundation/blockchain/database"
)

// Info is the current view of the FundMe ledger.
type Info struct {
	Address    database.AccountID
	Owner      database.AccountID
	PriceFeed  database.AccountID
	MinimumUSD *big.Int
	Balance    *big.Int
	Funders    []database.AccountID
}
