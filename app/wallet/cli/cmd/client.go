package cmd

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"

	"github.com/ardanlabs/fundme/foundation/blockchain/database"
	"github.com/ardanlabs/fundme/foundation/fundme/units"
)

type account struct {
	Account database.AccountID `json:"account"`
	Name    string             `json:"name"`
	Balance *big.Int           `json:"balance"`
	Ether   string             `json:"ether"`
	Nonce   uint64             `json:"nonce"`
}

type accounts struct {
	Accounts []account `json:"accounts"`
}

type funder struct {
	Index   int                `json:"index"`
	Account database.AccountID `json:"account"`
	Name    string             `json:"name"`
	Amount  *big.Int           `json:"amount"`
	Ether   string             `json:"ether"`
}

type fundMe struct {
	Address   database.AccountID `json:"address"`
	Owner     database.AccountID `json:"owner"`
	PriceFeed database.AccountID `json:"price_feed"`
	Balance   *big.Int           `json:"balance"`
	Ether     string             `json:"ether"`
	Funders   []funder           `json:"funders"`
}

type receipt struct {
	TxHash  string             `json:"tx_hash"`
	From    database.AccountID `json:"from"`
	To      database.AccountID `json:"to"`
	Method  string             `json:"method"`
	Value   *big.Int           `json:"value"`
	GasUsed uint64             `json:"gas_used"`
	GasCost *big.Int           `json:"gas_cost"`
	Status  int                `json:"status"`
	Error   string             `json:"error"`
}

type errorResponse struct {
	Error   string   `json:"error"`
	Details *receipt `json:"details"`
}

// getJSON decodes the response of a GET against the node.
func getJSON(path string, v any) error {
	resp, err := http.Get(url + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decode(resp, v)
}

func decode(resp *http.Response, v any) error {
	switch {
	case resp.StatusCode == http.StatusNoContent:
		return nil

	case resp.StatusCode >= http.StatusBadRequest:
		var er errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
			return fmt.Errorf("node responded %s", resp.Status)
		}
		return &callError{status: resp.StatusCode, msg: er.Error, receipt: er.Details}
	}

	return json.NewDecoder(resp.Body).Decode(v)
}

// callError is what the node responded with when a request failed. A call
// that reverted carries its receipt.
type callError struct {
	status  int
	msg     string
	receipt *receipt
}

func (ce *callError) Error() string {
	return fmt.Sprintf("%d: %s", ce.status, ce.msg)
}

// submit signs a call to the FundMe ledger with the next nonce of the
// account and submits it to the node.
func submit(privateKey *ecdsa.PrivateKey, method string, value *big.Int) (receipt, error) {
	var gen struct {
		ChainID uint64 `json:"chain_id"`
	}
	if err := getJSON("/v1/genesis", &gen); err != nil {
		return receipt{}, fmt.Errorf("genesis: %w", err)
	}

	var fm fundMe
	if err := getJSON("/v1/fundme", &fm); err != nil {
		return receipt{}, fmt.Errorf("fundme: %w", err)
	}

	accountID := database.PublicKeyToAccountID(privateKey.PublicKey)

	var acts accounts
	if err := getJSON("/v1/accounts/list/"+string(accountID), &acts); err != nil {
		return receipt{}, fmt.Errorf("account: %w", err)
	}

	if len(acts.Accounts) == 0 {
		return receipt{}, errors.New("account not found")
	}

	call, err := database.NewCall(gen.ChainID, acts.Accounts[0].Nonce, fm.Address, method, value)
	if err != nil {
		return receipt{}, err
	}

	signed, err := call.Sign(privateKey)
	if err != nil {
		return receipt{}, err
	}

	data, err := json.Marshal(signed)
	if err != nil {
		return receipt{}, err
	}

	resp, err := http.Post(url+"/v1/tx/submit", "application/json", bytes.NewReader(data))
	if err != nil {
		return receipt{}, err
	}
	defer resp.Body.Close()

	var rct receipt
	if err := decode(resp, &rct); err != nil {
		var ce *callError
		if errors.As(err, &ce) && ce.receipt != nil {
			return *ce.receipt, err
		}
		return receipt{}, err
	}

	return rct, nil
}

func printReceipt(w io.Writer, rct receipt) {
	status := "succeeded"
	if rct.Status == database.StatusReverted {
		status = "reverted: " + rct.Error
	}

	fmt.Fprintln(w, "tx:      ", rct.TxHash)
	fmt.Fprintln(w, "method:  ", rct.Method)
	fmt.Fprintln(w, "value:   ", units.FormatEther(rct.Value), "ETH")
	fmt.Fprintln(w, "gas used:", rct.GasUsed)
	fmt.Fprintln(w, "gas cost:", units.FormatEther(rct.GasCost), "ETH")
	fmt.Fprintln(w, "status:  ", status)
}
