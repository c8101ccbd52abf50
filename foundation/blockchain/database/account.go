package database

import (
	"crypto/ecdsa"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Account represents information stored in the database for an individual account.
type Account struct {
	AccountID AccountID `json:"account"`
	Nonce     uint64    `json:"nonce"`
	Balance   *big.Int  `json:"balance"`
}

// newAccount constructs a new account value for use.
func newAccount(accountID AccountID, balance *big.Int) Account {
	return Account{
		AccountID: accountID,
		Balance:   new(big.Int).Set(balance),
	}
}

// clone returns a copy of the account that shares no memory with the
// original so callers can't mutate the database through it.
func (a Account) clone() Account {
	bal := new(big.Int)
	if a.Balance != nil {
		bal.Set(a.Balance)
	}

	return Account{
		AccountID: a.AccountID,
		Nonce:     a.Nonce,
		Balance:   bal,
	}
}

// =============================================================================

// AccountID represents an account id that is used to sign calls and is
// associated with contributions recorded by the ledger. Contracts deployed
// on the chain are identified the same way.
type AccountID string

// ZeroAccountID represents the empty address.
const ZeroAccountID AccountID = "0x0000000000000000000000000000000000000000"

// ToAccountID converts a hex-encoded string to an account and validates the
// hex-encoded string is formatted correctly. The returned value is always
// in the EIP-55 checksum form so account ids can be compared directly.
func ToAccountID(hex string) (AccountID, error) {
	a := AccountID(hex)
	if !a.IsAccountID() {
		return "", errors.New("invalid account format")
	}

	return AccountID(common.HexToAddress(hex).Hex()), nil
}

// PublicKeyToAccountID converts the public key to an account value.
func PublicKeyToAccountID(pk ecdsa.PublicKey) AccountID {
	return AccountID(crypto.PubkeyToAddress(pk).Hex())
}

// ContractAccountID returns the address a contract receives when the
// specified deployer creates it with the specified nonce.
func ContractAccountID(deployer AccountID, nonce uint64) AccountID {
	return AccountID(crypto.CreateAddress(deployer.Address(), nonce).Hex())
}

// IsAccountID verifies whether the underlying data represents a valid
// hex-encoded account.
func (a AccountID) IsAccountID() bool {
	return common.IsHexAddress(string(a))
}

// Address converts the account id into the go-ethereum address type.
func (a AccountID) Address() common.Address {
	return common.HexToAddress(string(a))
}
