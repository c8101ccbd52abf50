package state

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ardanlabs/fundme/foundation/blockchain/database"
	"github.com/ardanlabs/fundme/foundation/blockchain/storage"
	"github.com/ardanlabs/fundme/foundation/fundme/ledger"
	"github.com/ardanlabs/fundme/foundation/fundme/pricefeed"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// DeployMock creates a MockV3Aggregator owned by the deployer.
func (s *State) DeployMock(deployer database.AccountID, name string, decimals uint8, initialAnswer *big.Int) (storage.Deployment, error) {
	if initialAnswer == nil {
		return storage.Deployment{}, fmt.Errorf("deploying %s: initial answer is required", name)
	}

	return s.deploy(deployer, name, ContractMockV3Aggregator, func(address database.AccountID) error {
		s.mocks[address] = pricefeed.NewMock(decimals, initialAnswer)
		return nil
	})
}

// DeployFundMe creates a FundMe ledger owned by the deployer that prices
// contributions with the oracle at the price feed address.
func (s *State) DeployFundMe(ctx context.Context, deployer database.AccountID, name string, priceFeed database.AccountID, minimumUSD *big.Int) (storage.Deployment, error) {
	return s.deploy(deployer, name, ContractFundMe, func(address database.AccountID) error {
		oracle, err := s.feed(priceFeed)
		if err != nil {
			return err
		}

		// Read the oracle once so a ledger is never deployed against
		// a feed that cannot answer.
		if _, err := oracle.LatestPrice(ctx); err != nil {
			return fmt.Errorf("price feed %s: %w", priceFeed, err)
		}

		l, err := ledger.New(ledger.Config{
			Owner:      deployer,
			PriceFeed:  priceFeed,
			Oracle:     oracle,
			MinimumUSD: minimumUSD,
		})
		if err != nil {
			return err
		}

		s.ledgers[address] = l
		return nil
	})
}

// deploy charges the deployer for the deployment, derives the contract
// address from the deployer's nonce and asks create to build the contract
// at that address. Nothing changes unless the deployment is committed.
func (s *State) deploy(deployer database.AccountID, name string, contract string, create func(address database.AccountID) error) (storage.Deployment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !deployer.IsAccountID() {
		return storage.Deployment{}, fmt.Errorf("invalid deployer %q", deployer)
	}

	for _, dep := range s.deployments {
		if dep.Name == name {
			return storage.Deployment{}, fmt.Errorf("deployment %q already exists at %s", name, dep.Address)
		}
	}

	gasUsed := s.genesis.Gas.Deploy
	fee := gasCost(gasUsed, s.genesis.GasPrice)

	account := s.db.Query(deployer)
	if account.Balance.Cmp(fee) < 0 {
		return storage.Deployment{}, fmt.Errorf("deploying %s: %w: balance %s, needed %s", name, database.ErrInsufficientFunds, account.Balance, fee)
	}

	// Everything below changes the chain, a failure puts it back.
	before := s.snapshot()
	fail := func(err error) (storage.Deployment, error) {
		if rerr := s.rollback(before); rerr != nil {
			err = errors.Join(err, rerr)
		}
		return storage.Deployment{}, fmt.Errorf("deploying %s: %w", name, err)
	}

	address := database.ContractAccountID(deployer, account.Nonce)
	if err := create(address); err != nil {
		return fail(err)
	}

	nonce := s.db.IncrementNonce(deployer)
	if err := s.db.Debit(deployer, fee); err != nil {
		return fail(err)
	}

	dep := storage.Deployment{
		Name:     name,
		Contract: contract,
		Address:  address,
		Deployer: deployer,
	}
	s.deployments = append(s.deployments, dep)

	receipt := database.Receipt{
		TxHash:            deployHash(deployer, nonce),
		From:              deployer,
		ContractAddress:   address,
		Contract:          contract,
		Method:            "constructor",
		Nonce:             nonce,
		Value:             new(big.Int),
		GasUsed:           gasUsed,
		EffectiveGasPrice: s.genesis.GasPrice,
		Status:            database.StatusSucceeded,
		TimeStamp:         time.Now().UTC(),
	}

	if err := s.storage.Commit(s.snapshot(), receipt); err != nil {
		return fail(fmt.Errorf("%w: persisting: %w", ErrStorage, err))
	}

	s.reporter.RecordDeployment(contract, gasUsed)

	s.evHandler("state: deploy: name[%s] contract[%s] address[%s] deployer[%s] gas[%d]", name, contract, address, deployer, gasUsed)

	return dep, nil
}

// deployHash produces the transaction hash for a deployment, which has no
// signed call behind it.
func deployHash(deployer database.AccountID, nonce uint64) string {
	data := fmt.Appendf(nil, "deploy:%s:%d", deployer, nonce)
	return hexutil.Encode(crypto.Keccak256(data))
}

// gasCost returns the wei paid for the units of gas at the price.
func gasCost(gasUsed uint64, gasPrice uint64) *big.Int {
	cost := new(big.Int).SetUint64(gasUsed)
	return cost.Mul(cost, new(big.Int).SetUint64(gasPrice))
}
