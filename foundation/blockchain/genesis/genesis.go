// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"time"
)

// Gas is the schedule of gas units charged for the operations the chain
// knows how to execute.
type Gas struct {
	Transaction       uint64 `json:"transaction"`         // Intrinsic cost paid by every call.
	Deploy            uint64 `json:"deploy"`              // Cost of creating a contract.
	Fund              uint64 `json:"fund"`                // Cost of recording a contribution.
	FundNewFunder     uint64 `json:"fund_new_funder"`     // Extra cost when the funder list grows.
	Withdraw          uint64 `json:"withdraw"`            // Cost of the withdrawal itself.
	WithdrawPerFunder uint64 `json:"withdraw_per_funder"` // Cost of resetting each funder.
}

// Genesis represents the genesis file.
type Genesis struct {
	Date     time.Time           `json:"date"`
	ChainID  uint64              `json:"chain_id"`  // The chain id represents an unique id for this running instance.
	GasPrice uint64              `json:"gas_price"` // Price in wei paid for each unit of gas.
	Gas      Gas                 `json:"gas"`
	Balances map[string]*big.Int `json:"balances"` // Starting wei balances for the named accounts.
}

// Default returns a genesis matching a local hardhat network. It is used
// by tests and when no genesis file is provided.
func Default(balances map[string]*big.Int) Genesis {
	return Genesis{
		Date:     time.Date(2022, time.September, 1, 0, 0, 0, 0, time.UTC),
		ChainID:  31337,
		GasPrice: 1_000_000_000,
		Gas: Gas{
			Transaction:       21_000,
			Deploy:            850_000,
			Fund:              45_000,
			FundNewFunder:     22_000,
			Withdraw:          12_000,
			WithdrawPerFunder: 5_000,
		},
		Balances: balances,
	}
}

// =============================================================================

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("decoding genesis %s: %w", path, err)
	}

	if genesis.ChainID == 0 {
		return Genesis{}, fmt.Errorf("genesis %s: chain id is required", path)
	}

	return genesis, nil
}
