// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/ardanlabs/fundme/business/core/fundme"
	"github.com/ardanlabs/fundme/business/web/errs"
	"github.com/ardanlabs/fundme/foundation/blockchain/database"
	"github.com/ardanlabs/fundme/foundation/blockchain/state"
	"github.com/ardanlabs/fundme/foundation/events"
	"github.com/ardanlabs/fundme/foundation/fundme/gasreport"
	"github.com/ardanlabs/fundme/foundation/fundme/pricefeed"
	"github.com/ardanlabs/fundme/foundation/fundme/units"
	"github.com/ardanlabs/fundme/foundation/nameservice"
	"github.com/ardanlabs/fundme/foundation/validate"
	"github.com/ardanlabs/fundme/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of FundMe endpoints.
type Handlers struct {
	Log    *zap.SugaredLogger
	State  *state.State
	Core   *fundme.Core
	NS     *nameservice.NameService
	WS     websocket.Upgrader
	Evts   *events.Events
	GasCfg gasreport.Config
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	// Need this to handle CORS on the websocket.
	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	// This upgrades the HTTP connection to a websocket connection.
	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	// This provides a channel for receiving events from the chain.
	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	// Starting a ticker to send a ping message over the websocket.
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	// Block waiting to receive events and send them to the client.
	for {
		select {
		case msg, wd := <-ch:

			// If the channel is closed, release the websocket.
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.Genesis(), http.StatusOK)
}

// FundMe returns the current view of the FundMe ledger.
func (h Handlers) FundMe(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	inf, err := h.Core.Info()
	if err != nil {
		return err
	}

	_, l, err := h.Core.Contract()
	if err != nil {
		return err
	}

	funders := make([]funder, len(inf.Funders))
	for i, accountID := range inf.Funders {
		amount := l.AddressToAmountFunded(accountID)
		funders[i] = funder{
			Index:   i,
			Account: accountID,
			Name:    h.NS.Lookup(accountID),
			Amount:  amount,
			Ether:   units.FormatEther(amount),
		}
	}

	resp := fundMe{
		Address:    inf.Address,
		Owner:      inf.Owner,
		OwnerName:  h.NS.Lookup(inf.Owner),
		PriceFeed:  inf.PriceFeed,
		MinimumUSD: inf.MinimumUSD,
		Balance:    inf.Balance,
		Ether:      units.FormatEther(inf.Balance),
		Funders:    funders,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// PriceFeed returns the latest answer of the ledger's oracle. Passing
// round=N returns that round of a mock oracle instead.
func (h Handlers) PriceFeed(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if round := r.URL.Query().Get("round"); round != "" {
		roundID, err := strconv.ParseUint(round, 10, 64)
		if err != nil {
			return errs.NewTrusted(fmt.Errorf("invalid round: %w", err), http.StatusBadRequest)
		}

		address, rd, decimals, err := h.Core.Round(roundID)
		if err != nil {
			return err
		}

		resp := priceFeed{
			Address:  address,
			Answer:   rd.Answer,
			Decimals: decimals,
			Price:    pricefeed.Price{Answer: rd.Answer, Decimals: decimals}.String(),
			Round:    &rd,
		}

		return web.Respond(ctx, w, resp, http.StatusOK)
	}

	address, price, err := h.Core.LatestPrice(ctx)
	if err != nil {
		return err
	}

	resp := priceFeed{
		Address:  address,
		Answer:   price.Answer,
		Decimals: price.Decimals,
		Price:    price.String(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// AmountFunded returns what the account contributed since the last
// withdrawal.
func (h Handlers) AmountFunded(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	accountID, amount, err := h.Core.AmountFunded(web.Param(r, "account"))
	if err != nil {
		return err
	}

	resp := amountFunded{
		Account: accountID,
		Name:    h.NS.Lookup(accountID),
		Amount:  amount,
		Ether:   units.FormatEther(amount),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Funder returns the funder at the index.
func (h Handlers) Funder(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	index, err := strconv.Atoi(web.Param(r, "index"))
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid index: %w", err), http.StatusBadRequest)
	}

	accountID, err := h.Core.Funder(index)
	if err != nil {
		return err
	}

	_, l, err := h.Core.Contract()
	if err != nil {
		return err
	}

	amount := l.AddressToAmountFunded(accountID)
	resp := funder{
		Index:   index,
		Account: accountID,
		Name:    h.NS.Lookup(accountID),
		Amount:  amount,
		Ether:   units.FormatEther(amount),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SubmitCall executes a signed call from a wallet and returns its receipt.
func (h Handlers) SubmitCall(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var sc signedCall
	if err := web.Decode(r, &sc); err != nil {
		if validate.IsFieldErrors(err) {
			return err
		}
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	signed := sc.toDB()

	h.Log.Infow("submit call", "traceid", web.GetTraceID(ctx), "from:nonce", signed, "to", signed.ToID, "method", signed.Method, "value", signed.Value)

	rct, err := h.Core.SubmitCall(ctx, signed)
	if err != nil {
		if re := errs.GetTrusted(err); re != nil && re.Details != nil {
			re.Details = h.toReceipt(rct)
		}
		return err
	}

	return web.Respond(ctx, w, h.toReceipt(rct), http.StatusOK)
}

// Receipts returns the receipts recorded by the chain, optionally for a
// single account.
func (h Handlers) Receipts(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	rcts, err := h.Core.Receipts(web.Param(r, "account"))
	if err != nil {
		return err
	}

	if len(rcts) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	resp := make([]receipt, len(rcts))
	for i, rct := range rcts {
		resp[i] = h.toReceipt(rct)
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Accounts returns the current balances for all external accounts and the
// contracts deployed on the chain.
func (h Handlers) Accounts(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var accounts []database.Account

	switch account := web.Param(r, "account"); account {
	case "":
		for _, act := range h.State.QueryAccounts() {
			accounts = append(accounts, act)
		}
		sort.Slice(accounts, func(i, j int) bool { return accounts[i].AccountID < accounts[j].AccountID })

	default:
		accountID, err := database.ToAccountID(account)
		if err != nil {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
		accounts = append(accounts, h.State.QueryAccount(accountID))
	}

	acts := make([]info, len(accounts))
	for i, act := range accounts {
		acts[i] = info{
			Account: act.AccountID,
			Name:    h.NS.Lookup(act.AccountID),
			Balance: act.Balance,
			Ether:   units.FormatEther(act.Balance),
			Nonce:   act.Nonce,
		}
	}

	var contracts []contract
	for _, dep := range h.State.Deployments() {
		contracts = append(contracts, contract{
			Name:     dep.Name,
			Contract: dep.Contract,
			Address:  dep.Address,
			Balance:  h.State.Balance(dep.Address),
		})
	}

	resp := actInfo{
		Accounts:  acts,
		Contracts: contracts,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// GasReport returns the gas used by each method and deployment priced with
// the oracle. Passing format=text renders the plain table.
func (h Handlers) GasReport(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	rpt, err := h.Core.GasReport(ctx, h.GasCfg)
	if err != nil {
		return err
	}

	if r.URL.Query().Get("format") != "text" {
		return web.Respond(ctx, w, rpt, http.StatusOK)
	}

	if err := web.SetStatusCode(ctx, http.StatusOK); err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	if err := rpt.Render(w, true); err != nil {
		return fmt.Errorf("rendering gas report: %w", err)
	}

	return nil
}

// =============================================================================

func (h Handlers) toReceipt(rct database.Receipt) receipt {
	return receipt{
		TxHash:            rct.TxHash,
		From:              rct.From,
		FromName:          h.NS.Lookup(rct.From),
		To:                rct.To,
		ContractAddress:   rct.ContractAddress,
		Contract:          rct.Contract,
		Method:            rct.Method,
		Nonce:             rct.Nonce,
		Value:             rct.Value,
		GasUsed:           rct.GasUsed,
		EffectiveGasPrice: rct.EffectiveGasPrice,
		GasCost:           rct.GasCost(),
		Status:            rct.Status,
		Error:             rct.Error,
		TimeStamp:         rct.TimeStamp,
	}
}
