package database

import (
	"math/big"
	"time"
)

// Receipt status values.
const (
	StatusReverted  = 0
	StatusSucceeded = 1
)

// Receipt records the outcome of executing a call or a deployment. Gas is
// paid by the caller whether the call succeeded or reverted.
type Receipt struct {
	TxHash            string    `json:"tx_hash"`
	From              AccountID `json:"from"`
	To                AccountID `json:"to"`
	ContractAddress   AccountID `json:"contract_address,omitempty"`
	Contract          string    `json:"contract"`
	Method            string    `json:"method"`
	Nonce             uint64    `json:"nonce"`
	Value             *big.Int  `json:"value"`
	GasUsed           uint64    `json:"gas_used"`
	EffectiveGasPrice uint64    `json:"effective_gas_price"`
	Status            int       `json:"status"`
	Error             string    `json:"error,omitempty"`
	TimeStamp         time.Time `json:"timestamp"`
}

// GasCost returns the wei paid for the gas used by the call.
func (r Receipt) GasCost() *big.Int {
	cost := new(big.Int).SetUint64(r.GasUsed)
	return cost.Mul(cost, new(big.Int).SetUint64(r.EffectiveGasPrice))
}

// Succeeded reports whether the call committed.
func (r Receipt) Succeeded() bool {
	return r.Status == StatusSucceeded
}
