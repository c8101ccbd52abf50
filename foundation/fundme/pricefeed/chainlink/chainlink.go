// Package chainlink implements a price feed backed by a Chainlink
// AggregatorV3 contract on a live network.
package chainlink

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ardanlabs/fundme/foundation/fundme/pricefeed"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// aggregatorABI is the subset of AggregatorV3Interface the feed calls.
const aggregatorABI = `[
	{"inputs":[],"name":"decimals","outputs":[{"internalType":"uint8","name":"","type":"uint8"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"latestRoundData","outputs":[
		{"internalType":"uint80","name":"roundId","type":"uint80"},
		{"internalType":"int256","name":"answer","type":"int256"},
		{"internalType":"uint256","name":"startedAt","type":"uint256"},
		{"internalType":"uint256","name":"updatedAt","type":"uint256"},
		{"internalType":"uint80","name":"answeredInRound","type":"uint80"}
	],"stateMutability":"view","type":"function"}
]`

// Caller is the behavior required to execute read only contract calls.
// An *ethclient.Client satisfies it.
type Caller interface {
	BlockNumber(ctx context.Context) (uint64, error)
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Feed reads prices from an aggregator contract.
type Feed struct {
	caller        Caller
	address       common.Address
	abi           abi.ABI
	confirmations uint64

	mu       sync.Mutex
	decimals *uint8
}

// New constructs a feed that reads the aggregator at the specified address.
// With confirmations above zero the aggregator is read at the block that
// many blocks behind the head instead of at the head.
func New(caller Caller, address string, confirmations uint64) (*Feed, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid aggregator address %q", address)
	}

	parsed, err := abi.JSON(strings.NewReader(aggregatorABI))
	if err != nil {
		return nil, fmt.Errorf("parsing aggregator abi: %w", err)
	}

	f := Feed{
		caller:        caller,
		address:       common.HexToAddress(address),
		abi:           parsed,
		confirmations: confirmations,
	}

	return &f, nil
}

// Address returns the aggregator address.
func (f *Feed) Address() string {
	return f.address.Hex()
}

// LatestPrice implements the pricefeed.Feed interface.
func (f *Feed) LatestPrice(ctx context.Context) (pricefeed.Price, error) {
	decimals, err := f.Decimals(ctx)
	if err != nil {
		return pricefeed.Price{}, err
	}

	rd, err := f.LatestRoundData(ctx)
	if err != nil {
		return pricefeed.Price{}, err
	}

	if rd.Answer.Sign() <= 0 {
		return pricefeed.Price{}, fmt.Errorf("%w: round %d answered %s", pricefeed.ErrNoAnswer, rd.RoundID, rd.Answer)
	}

	return pricefeed.Price{Answer: rd.Answer, Decimals: decimals}, nil
}

// Decimals returns the precision of the aggregator's answers. The value
// never changes for a deployed aggregator so it is read once.
func (f *Feed) Decimals(ctx context.Context) (uint8, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.decimals != nil {
		return *f.decimals, nil
	}

	out, err := f.call(ctx, "decimals")
	if err != nil {
		return 0, err
	}

	d, ok := out[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("decimals: unexpected type %T", out[0])
	}
	f.decimals = &d

	return d, nil
}

// LatestRoundData returns the aggregator's latest round.
func (f *Feed) LatestRoundData(ctx context.Context) (pricefeed.RoundData, error) {
	out, err := f.call(ctx, "latestRoundData")
	if err != nil {
		return pricefeed.RoundData{}, err
	}

	if len(out) != 5 {
		return pricefeed.RoundData{}, fmt.Errorf("latestRoundData: got %d values, exp 5", len(out))
	}

	values := make([]*big.Int, len(out))
	for i, v := range out {
		bi, ok := v.(*big.Int)
		if !ok {
			return pricefeed.RoundData{}, fmt.Errorf("latestRoundData: value %d: unexpected type %T", i, v)
		}
		values[i] = bi
	}

	rd := pricefeed.RoundData{
		RoundID:         values[0].Uint64(),
		Answer:          values[1],
		StartedAt:       unixTime(values[2]),
		UpdatedAt:       unixTime(values[3]),
		AnsweredInRound: values[4].Uint64(),
	}

	return rd, nil
}

// call packs the method, executes it against the aggregator and unpacks
// the outputs.
func (f *Feed) call(ctx context.Context, method string) ([]any, error) {
	input, err := f.abi.Pack(method)
	if err != nil {
		return nil, fmt.Errorf("%s: pack: %w", method, err)
	}

	msg := ethereum.CallMsg{
		To:   &f.address,
		Data: input,
	}

	block, err := f.confirmedBlock(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}

	output, err := f.caller.CallContract(ctx, msg, block)
	if err != nil {
		return nil, fmt.Errorf("%s: call %s: %w", method, f.address.Hex(), err)
	}

	out, err := f.abi.Unpack(method, output)
	if err != nil {
		return nil, fmt.Errorf("%s: unpack: %w", method, err)
	}

	return out, nil
}

// confirmedBlock returns the block to read at, nil meaning the head.
func (f *Feed) confirmedBlock(ctx context.Context) (*big.Int, error) {
	if f.confirmations == 0 {
		return nil, nil
	}

	head, err := f.caller.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading block number: %w", err)
	}

	if head < f.confirmations {
		return new(big.Int), nil
	}

	return new(big.Int).SetUint64(head - f.confirmations), nil
}
