package database

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ardanlabs/fundme/foundation/blockchain/signature"
)

// Set of contract methods a call can invoke. A call with an empty method
// is a plain value transfer which the ledger treats as a fund.
const (
	MethodFund     = "fund"
	MethodWithdraw = "withdraw"
	MethodReceive  = ""
)

// Call is the information a caller submits to invoke a contract method.
type Call struct {
	ChainID uint64    `json:"chain_id"` // Ethereum: The chain id that is listed in the genesis file.
	Nonce   uint64    `json:"nonce"`    // Ethereum: Unique id for the transaction supplied by the user.
	ToID    AccountID `json:"to"`       // Ethereum: Contract receiving the call.
	Method  string    `json:"method"`   // Ethereum: Function selector, by name.
	Value   *big.Int  `json:"value"`    // Ethereum: Wei attached to the call.
}

// NewCall constructs a new call.
func NewCall(chainID uint64, nonce uint64, toID AccountID, method string, value *big.Int) (Call, error) {
	if !toID.IsAccountID() {
		return Call{}, fmt.Errorf("to account is not properly formatted")
	}

	if value == nil {
		value = new(big.Int)
	}

	call := Call{
		ChainID: chainID,
		Nonce:   nonce,
		ToID:    toID,
		Method:  method,
		Value:   value,
	}

	return call, nil
}

// Sign uses the specified private key to sign the call.
func (c Call) Sign(privateKey *ecdsa.PrivateKey) (SignedCall, error) {

	// Validate the to account address is a valid address.
	if !c.ToID.IsAccountID() {
		return SignedCall{}, fmt.Errorf("to account is not properly formatted")
	}

	// Sign the call with the private key to produce a signature.
	v, r, s, err := signature.Sign(c, privateKey)
	if err != nil {
		return SignedCall{}, err
	}

	signedCall := SignedCall{
		Call: c,
		V:    v,
		R:    r,
		S:    s,
	}

	return signedCall, nil
}

// =============================================================================

// SignedCall is a signed version of the call. This is how clients like
// a wallet submit calls for execution.
type SignedCall struct {
	Call
	V *big.Int `json:"v"` // Ethereum: Recovery identifier, either 29 or 30 with the fundme id.
	R *big.Int `json:"r"` // Ethereum: First coordinate of the ECDSA signature.
	S *big.Int `json:"s"` // Ethereum: Second coordinate of the ECDSA signature.
}

// Validate verifies the call has a proper signature that conforms to our
// standards and carries a usable value and to account.
func (sc SignedCall) Validate(chainID uint64) error {
	if sc.ChainID != chainID {
		return fmt.Errorf("invalid chain id, got[%d] exp[%d]", sc.ChainID, chainID)
	}

	if !sc.ToID.IsAccountID() {
		return errors.New("invalid account for to account")
	}

	if sc.Value == nil || sc.Value.Sign() < 0 {
		return errors.New("invalid value")
	}

	if sc.V == nil || sc.R == nil || sc.S == nil {
		return errors.New("missing signature")
	}

	if err := signature.VerifySignature(sc.V, sc.R, sc.S); err != nil {
		return err
	}

	return nil
}

// FromAccount extracts the account id that signed the call.
func (sc SignedCall) FromAccount() (AccountID, error) {
	address, err := signature.FromAddress(sc.Call, sc.V, sc.R, sc.S)
	return AccountID(address), err
}

// Hash returns the unique hash for the signed call.
func (sc SignedCall) Hash() string {
	return signature.Hash(sc)
}

// SignatureString returns the signature as a string.
func (sc SignedCall) SignatureString() string {
	return signature.SignatureString(sc.V, sc.R, sc.S)
}

// String implements the fmt.Stringer interface for logging.
func (sc SignedCall) String() string {
	from, err := sc.FromAccount()
	if err != nil {
		from = "unknown"
	}

	return fmt.Sprintf("%s:%d", from, sc.Nonce)
}
