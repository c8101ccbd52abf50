package state

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ardanlabs/fundme/foundation/blockchain/database"
	"github.com/ardanlabs/fundme/foundation/fundme/ledger"
)

// SubmitCall executes a signed call against a deployed FundMe ledger. The
// caller pays for the gas whether the call succeeds or reverts; the value
// attached to a reverted call is returned. A reverted call produces both a
// receipt and an error wrapping ErrReverted and the ledger's error.
func (s *State) SubmitCall(ctx context.Context, signedCall database.SignedCall) (database.Receipt, error) {
	if err := signedCall.Validate(s.genesis.ChainID); err != nil {
		return database.Receipt{}, err
	}

	from, err := signedCall.FromAccount()
	if err != nil {
		return database.Receipt{}, fmt.Errorf("unable to recover from account: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, exists := s.ledgers[signedCall.ToID]
	if !exists {
		return database.Receipt{}, fmt.Errorf("%w: %s", ErrNotDeployed, signedCall.ToID)
	}

	gasUsed, err := s.estimateGas(l, from, signedCall.Method)
	if err != nil {
		return database.Receipt{}, err
	}

	if err := s.db.ValidateNonce(from, signedCall.Nonce); err != nil {
		return database.Receipt{}, err
	}

	// The caller must be able to pay for the gas and the value before
	// anything is executed.
	fee := gasCost(gasUsed, s.genesis.GasPrice)
	needed := new(big.Int).Add(fee, signedCall.Value)
	if balance := s.db.Query(from).Balance; balance.Cmp(needed) < 0 {
		return database.Receipt{}, fmt.Errorf("%w: balance %s, needed %s", database.ErrInsufficientFunds, balance, needed)
	}

	// Everything below changes the chain, a failure to commit puts it back.
	before := s.snapshot()

	s.db.IncrementNonce(from)
	if err := s.db.Debit(from, fee); err != nil {
		return database.Receipt{}, errors.Join(err, s.rollback(before))
	}

	execErr := s.execute(ctx, l, from, signedCall)

	receipt := database.Receipt{
		TxHash:            signedCall.Hash(),
		From:              from,
		To:                signedCall.ToID,
		Contract:          ContractFundMe,
		Method:            methodName(signedCall.Method),
		Nonce:             signedCall.Nonce,
		Value:             new(big.Int).Set(signedCall.Value),
		GasUsed:           gasUsed,
		EffectiveGasPrice: s.genesis.GasPrice,
		Status:            database.StatusSucceeded,
		TimeStamp:         time.Now().UTC(),
	}

	if execErr != nil {
		receipt.Status = database.StatusReverted
		receipt.Error = execErr.Error()
	}

	if err := s.storage.Commit(s.snapshot(), receipt); err != nil {
		s.evHandler("state: SubmitCall: persisting: ERROR: %s", err)
		return database.Receipt{}, errors.Join(fmt.Errorf("%w: persisting call %s: %w", ErrStorage, receipt.TxHash, err), s.rollback(before))
	}

	if execErr == nil {
		s.reporter.RecordCall(ContractFundMe, receipt.Method, gasUsed)
	}

	s.evHandler("state: SubmitCall: from[%s] to[%s] method[%s] value[%s] gas[%d] status[%d]", from, signedCall.ToID, receipt.Method, signedCall.Value, gasUsed, receipt.Status)

	if execErr != nil {
		return receipt, fmt.Errorf("%w: %w", ErrReverted, execErr)
	}

	return receipt, nil
}

// execute runs the method against the ledger. Any value moved out of the
// caller's account is put back if the ledger rejects the call.
func (s *State) execute(ctx context.Context, l *ledger.Ledger, from database.AccountID, signedCall database.SignedCall) error {
	switch signedCall.Method {
	case database.MethodFund, database.MethodReceive:
		if err := s.db.Debit(from, signedCall.Value); err != nil {
			return err
		}

		if err := l.Fund(ctx, from, signedCall.Value); err != nil {
			if rerr := s.db.Credit(from, signedCall.Value); rerr != nil {
				return errors.Join(err, rerr)
			}
			return err
		}

		return nil

	case database.MethodWithdraw:
		if signedCall.Value.Sign() > 0 {
			return ErrNonPayable
		}

		amount, err := l.Withdraw(from, func(to database.AccountID, amount *big.Int) error {
			return s.db.Credit(to, amount)
		})
		if err != nil {
			return err
		}

		s.evHandler("state: SubmitCall: withdraw: owner[%s] amount[%s]", from, amount)
		return nil
	}

	return fmt.Errorf("%w: %q", ErrUnknownMethod, signedCall.Method)
}

// estimateGas returns the units of gas the method costs given the current
// ledger. The caller must hold the lock.
func (s *State) estimateGas(l *ledger.Ledger, from database.AccountID, method string) (uint64, error) {
	gas := s.genesis.Gas

	switch method {
	case database.MethodFund, database.MethodReceive:
		units := gas.Transaction + gas.Fund
		if l.AddressToAmountFunded(from).Sign() == 0 {
			units += gas.FundNewFunder
		}
		return units, nil

	case database.MethodWithdraw:
		funders := uint64(len(l.Funders()))
		return gas.Transaction + gas.Withdraw + gas.WithdrawPerFunder*funders, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
}

// methodName returns the name used in receipts and the gas report.
func methodName(method string) string {
	if method == database.MethodReceive {
		return "receive"
	}
	return method
}
