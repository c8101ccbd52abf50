package ledger

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ardanlabs/fundme/foundation/fundme/pricefeed"
)

// precision is the number of decimals wei amounts and reference currency
// values are scaled to.
const precision = 18

// oneEther is 1e18 wei.
var oneEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(precision), nil)

// USD converts whole reference currency units into the 18 decimal form
// the ledger compares against. USD(50) is the default threshold.
func USD(units int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(units), oneEther)
}

// ConversionRate returns the value of the wei amount in the reference
// currency, scaled to 18 decimals, using the feed's latest price.
func ConversionRate(ctx context.Context, amount *big.Int, feed pricefeed.Feed) (*big.Int, error) {
	price, err := feed.LatestPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading price feed: %w", err)
	}

	if err := price.Validate(); err != nil {
		return nil, err
	}

	return convert(amount, price), nil
}

// convert performs the conversion for a known price.
func convert(amount *big.Int, price pricefeed.Price) *big.Int {
	scaled := scalePrice(price)

	usd := new(big.Int).Mul(scaled, amount)
	return usd.Quo(usd, oneEther)
}

// scalePrice brings the feed answer to 18 decimals.
func scalePrice(price pricefeed.Price) *big.Int {
	scaled := new(big.Int).Set(price.Answer)

	switch {
	case price.Decimals < precision:
		factor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(precision-price.Decimals)), nil)
		scaled.Mul(scaled, factor)

	case price.Decimals > precision:
		factor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(price.Decimals-precision)), nil)
		scaled.Quo(scaled, factor)
	}

	return scaled
}
