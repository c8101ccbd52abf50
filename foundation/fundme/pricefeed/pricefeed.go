// Package pricefeed provides the read only price oracle the ledger uses to
// value contributions in the reference currency.
package pricefeed

import (
	"context"
	"errors"
	"fmt"
	"math/big"
)

// ErrNoAnswer is returned when a feed has no price to report.
var ErrNoAnswer = errors.New("price feed has no answer")

// Price is the price of one unit of the native currency in the reference
// currency, expressed as an integer with Decimals digits of precision.
// An Answer of 200000000000 with 8 Decimals is 2000.00000000.
type Price struct {
	Answer   *big.Int `json:"answer"`
	Decimals uint8    `json:"decimals"`
}

// String implements the fmt.Stringer interface for logging.
func (p Price) String() string {
	if p.Answer == nil {
		return "<nil>"
	}

	f := new(big.Float).SetInt(p.Answer)
	scale := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(p.Decimals)), nil))
	f.Quo(f, scale)

	return f.Text('f', int(p.Decimals))
}

// Validate checks the price can be used for conversions.
func (p Price) Validate() error {
	if p.Answer == nil {
		return ErrNoAnswer
	}

	if p.Decimals > 77 {
		return fmt.Errorf("price feed decimals out of range: %d", p.Decimals)
	}

	return nil
}

// Feed is the behavior the ledger needs from an oracle. Mocks used on
// development networks and live feeds are interchangeable behind it.
type Feed interface {
	LatestPrice(ctx context.Context) (Price, error)
}
