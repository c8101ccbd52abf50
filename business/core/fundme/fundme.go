// Package fundme provides the business access to the FundMe ledger deployed
// on the chain. It resolves the deployment, executes calls and converts
// chain and ledger errors into errors the web layer can trust.
package fundme

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"

	"github.com/ardanlabs/fundme/business/sys/metrics"
	"github.com/ardanlabs/fundme/business/web/errs"
	"github.com/ardanlabs/fundme/foundation/blockchain/database"
	"github.com/ardanlabs/fundme/foundation/blockchain/state"
	"github.com/ardanlabs/fundme/foundation/blockchain/storage"
	"github.com/ardanlabs/fundme/foundation/fundme/deploy"
	"github.com/ardanlabs/fundme/foundation/fundme/gasreport"
	"github.com/ardanlabs/fundme/foundation/fundme/ledger"
	"github.com/ardanlabs/fundme/foundation/fundme/pricefeed"
	"github.com/ardanlabs/fundme/foundation/web"
	"go.uber.org/zap"
)

// Core manages the set of APIs for FundMe access.
type Core struct {
	log   *zap.SugaredLogger
	state *state.State
}

// NewCore constructs a core for FundMe api access.
func NewCore(log *zap.SugaredLogger, st *state.State) *Core {
	return &Core{
		log:   log,
		state: st,
	}
}

// Contract returns the FundMe deployment and the ledger behind it.
func (c *Core) Contract() (storage.Deployment, *ledger.Ledger, error) {
	dep, err := c.state.Deployment(deploy.NameFundMe)
	if err != nil {
		return storage.Deployment{}, nil, errs.NewTrusted(err, http.StatusNotFound)
	}

	l, err := c.state.Ledger(dep.Address)
	if err != nil {
		return storage.Deployment{}, nil, errs.NewTrusted(err, http.StatusNotFound)
	}

	return dep, l, nil
}

// Info returns the current view of the FundMe ledger.
func (c *Core) Info() (Info, error) {
	dep, l, err := c.Contract()
	if err != nil {
		return Info{}, err
	}

	info := Info{
		Address:    dep.Address,
		Owner:      l.Owner(),
		PriceFeed:  l.PriceFeed(),
		MinimumUSD: l.MinimumUSD(),
		Balance:    l.Balance(),
		Funders:    l.Funders(),
	}

	return info, nil
}

// LatestPrice reads the oracle the ledger prices contributions with.
func (c *Core) LatestPrice(ctx context.Context) (database.AccountID, pricefeed.Price, error) {
	dep, l, err := c.Contract()
	if err != nil {
		return "", pricefeed.Price{}, err
	}

	feed, err := c.state.PriceFeed(dep.Address)
	if err != nil {
		return "", pricefeed.Price{}, err
	}

	price, err := feed.LatestPrice(ctx)
	if err != nil {
		return "", pricefeed.Price{}, fmt.Errorf("reading price feed %s: %w", l.PriceFeed(), err)
	}

	return l.PriceFeed(), price, nil
}

// Round returns a past round of the ledger's oracle. Rounds are only kept
// by mock feeds deployed on this chain.
func (c *Core) Round(roundID uint64) (database.AccountID, pricefeed.RoundData, uint8, error) {
	_, l, err := c.Contract()
	if err != nil {
		return "", pricefeed.RoundData{}, 0, err
	}

	mock, err := c.state.Mock(l.PriceFeed())
	if err != nil {
		return "", pricefeed.RoundData{}, 0, errs.NewTrusted(err, http.StatusNotFound)
	}

	rd, err := mock.GetRoundData(roundID)
	if err != nil {
		return "", pricefeed.RoundData{}, 0, errs.NewTrusted(fmt.Errorf("round %d: %w", roundID, err), http.StatusNotFound)
	}

	return l.PriceFeed(), rd, mock.Decimals(), nil
}

// AmountFunded returns what the account contributed since the last
// withdrawal.
func (c *Core) AmountFunded(account string) (database.AccountID, *big.Int, error) {
	accountID, err := database.ToAccountID(account)
	if err != nil {
		return "", nil, errs.NewTrusted(err, http.StatusBadRequest)
	}

	_, l, err := c.Contract()
	if err != nil {
		return "", nil, err
	}

	return accountID, l.AddressToAmountFunded(accountID), nil
}

// Funder returns the funder at the index.
func (c *Core) Funder(index int) (database.AccountID, error) {
	_, l, err := c.Contract()
	if err != nil {
		return "", err
	}

	funder, err := l.Funder(index)
	if err != nil {
		return "", toTrusted(err)
	}

	return funder, nil
}

// SubmitCall executes the signed call. A reverted call returns the receipt
// along with a trusted error carrying the status for the ledger's error.
func (c *Core) SubmitCall(ctx context.Context, signedCall database.SignedCall) (database.Receipt, error) {
	receipt, err := c.state.SubmitCall(ctx, signedCall)

	switch {
	case err == nil:
		metrics.AddCall(ctx, false)
		return receipt, nil

	case errors.Is(err, state.ErrStorage):
		c.log.Errorw("submit call", "traceid", web.GetTraceID(ctx), "status", "not persisted", "ERROR", err)
		return receipt, err

	case errors.Is(err, state.ErrReverted):
		metrics.AddCall(ctx, true)
		c.log.Infow("submit call", "traceid", web.GetTraceID(ctx), "status", "reverted", "tx", receipt.TxHash, "ERROR", err)
		return receipt, errs.WithDetails(toTrusted(err), receipt)

	case receipt.TxHash == "":
		// Rejected before execution, nothing was charged.
		return receipt, toTrusted(err)
	}

	return receipt, err
}

// Receipts returns every receipt, optionally only those sent from or to
// the account.
func (c *Core) Receipts(account string) ([]database.Receipt, error) {
	receipts, err := c.state.Receipts()
	if err != nil {
		return nil, err
	}

	if account == "" {
		return receipts, nil
	}

	accountID, err := database.ToAccountID(account)
	if err != nil {
		return nil, errs.NewTrusted(err, http.StatusBadRequest)
	}

	var out []database.Receipt
	for _, rct := range receipts {
		if rct.From == accountID || rct.To == accountID || rct.ContractAddress == accountID {
			out = append(out, rct)
		}
	}

	return out, nil
}

// GasReport prices the gas recorded by the chain.
func (c *Core) GasReport(ctx context.Context, cfg gasreport.Config) (gasreport.Report, error) {
	dep, _, err := c.Contract()
	if err != nil {
		return gasreport.Report{}, err
	}

	return c.state.GasReport(ctx, cfg, dep.Address), nil
}

// =============================================================================

// toTrusted assigns the status code for the errors a caller can cause.
func toTrusted(err error) error {
	switch {
	case errors.Is(err, ledger.ErrNotOwner):
		return errs.NewTrusted(err, http.StatusForbidden)

	case errors.Is(err, ledger.ErrIndexOutOfRange),
		errors.Is(err, state.ErrNotDeployed):
		return errs.NewTrusted(err, http.StatusNotFound)
	}

	return errs.NewTrusted(err, http.StatusBadRequest)
}
