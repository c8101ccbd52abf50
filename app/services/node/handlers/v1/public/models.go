package public

import (
	"math/big"
	"time"

	"github.com/ardanlabs/fundme/foundation/blockchain/database"
	"github.com/ardanlabs/fundme/foundation/fundme/pricefeed"
)

type funder struct {
	Index   int                `json:"index"`
	Account database.AccountID `json:"account"`
	Name    string             `json:"name"`
	Amount  *big.Int           `json:"amount"`
	Ether   string             `json:"ether"`
}

type fundMe struct {
	Address    database.AccountID `json:"address"`
	Owner      database.AccountID `json:"owner"`
	OwnerName  string             `json:"owner_name"`
	PriceFeed  database.AccountID `json:"price_feed"`
	MinimumUSD *big.Int           `json:"minimum_usd"`
	Balance    *big.Int           `json:"balance"`
	Ether      string             `json:"ether"`
	Funders    []funder           `json:"funders"`
}

type priceFeed struct {
	Address  database.AccountID   `json:"address"`
	Answer   *big.Int             `json:"answer"`
	Decimals uint8                `json:"decimals"`
	Price    string               `json:"price"`
	Round    *pricefeed.RoundData `json:"round,omitempty"`
}

type amountFunded struct {
	Account database.AccountID `json:"account"`
	Name    string             `json:"name"`
	Amount  *big.Int           `json:"amount"`
	Ether   string             `json:"ether"`
}

type info struct {
	Account database.AccountID `json:"account"`
	Name    string             `json:"name"`
	Balance *big.Int           `json:"balance"`
	Ether   string             `json:"ether"`
	Nonce   uint64             `json:"nonce"`
}

type contract struct {
	Name     string             `json:"name"`
	Contract string             `json:"contract"`
	Address  database.AccountID `json:"address"`
	Balance  *big.Int           `json:"balance"`
}

type actInfo struct {
	Accounts  []info     `json:"accounts"`
	Contracts []contract `json:"contracts,omitempty"`
}

type receipt struct {
	TxHash            string             `json:"tx_hash"`
	From              database.AccountID `json:"from"`
	FromName          string             `json:"from_name"`
	To                database.AccountID `json:"to,omitempty"`
	ContractAddress   database.AccountID `json:"contract_address,omitempty"`
	Contract          string             `json:"contract"`
	Method            string             `json:"method"`
	Nonce             uint64             `json:"nonce"`
	Value             *big.Int           `json:"value"`
	GasUsed           uint64             `json:"gas_used"`
	EffectiveGasPrice uint64             `json:"effective_gas_price"`
	GasCost           *big.Int           `json:"gas_cost"`
	Status            int                `json:"status"`
	Error             string             `json:"error,omitempty"`
	TimeStamp         time.Time          `json:"timestamp"`
}

// signedCall is the payload a wallet submits. The fields are exactly the
// ones the wallet signed, the to account is not normalized.
type signedCall struct {
	ChainID uint64   `json:"chain_id" validate:"required"`
	Nonce   uint64   `json:"nonce"`
	ToID    string   `json:"to" validate:"required,eth_addr"`
	Method  string   `json:"method" validate:"omitempty,oneof=fund withdraw"`
	Value   *big.Int `json:"value" validate:"required"`
	V       *big.Int `json:"v" validate:"required"`
	R       *big.Int `json:"r" validate:"required"`
	S       *big.Int `json:"s" validate:"required"`
}

func (sc signedCall) toDB() database.SignedCall {
	return database.SignedCall{
		Call: database.Call{
			ChainID: sc.ChainID,
			Nonce:   sc.Nonce,
			ToID:    database.AccountID(sc.ToID),
			Method:  sc.Method,
			Value:   sc.Value,
		},
		V: sc.V,
		R: sc.R,
		S: sc.S,
	}
}
