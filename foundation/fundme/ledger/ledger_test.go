package ledger_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ardanlabs/fundme/foundation/blockchain/database"
	"github.com/ardanlabs/fundme/foundation/fundme/ledger"
	"github.com/ardanlabs/fundme/foundation/fundme/pricefeed"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	owner     database.AccountID = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	user      database.AccountID = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	other     database.AccountID = "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"
	priceFeed database.AccountID = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
)

// sendValue is 0.5 ETH.
var sendValue = new(big.Int).Div(ether(1), big.NewInt(2))

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func newLedger(t *testing.T) *ledger.Ledger {
	l, err := ledger.New(ledger.Config{
		Owner:      owner,
		PriceFeed:  priceFeed,
		Oracle:     pricefeed.NewMock(pricefeed.DefaultDecimals, pricefeed.DefaultInitialAnswer),
		MinimumUSD: ledger.USD(50),
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct a ledger: %s", failed, err)
	}

	return l
}

// =============================================================================

func Test_Constructor(t *testing.T) {
	t.Log("Given the need to construct a ledger.")
	{
		l := newLedger(t)

		if l.PriceFeed() != priceFeed {
			t.Logf("\t\tgot: %s", l.PriceFeed())
			t.Logf("\t\texp: %s", priceFeed)
			t.Fatalf("\t%s\tShould set the aggregator address correctly.", failed)
		}
		t.Logf("\t%s\tShould set the aggregator address correctly.", success)

		if l.Owner() != owner {
			t.Fatalf("\t%s\tShould set the owner to the deployer.", failed)
		}
		t.Logf("\t%s\tShould set the owner to the deployer.", success)

		if _, err := ledger.New(ledger.Config{Owner: owner}); err == nil {
			t.Fatalf("\t%s\tShould require an oracle.", failed)
		}
		t.Logf("\t%s\tShould require an oracle.", success)
	}
}

func Test_Fund(t *testing.T) {
	type table struct {
		name    string
		amounts []*big.Int
		err     error
		funded  *big.Int
		funders int
	}

	// At 2000 USD per ETH the 50 USD minimum is 0.025 ETH.
	minimum := new(big.Int).Div(ether(1), big.NewInt(40))

	tt := []table{
		{
			name:    "no-value",
			amounts: []*big.Int{big.NewInt(0)},
			err:     ledger.ErrInsufficientContribution,
			funded:  big.NewInt(0),
		},
		{
			name:    "below-minimum",
			amounts: []*big.Int{new(big.Int).Sub(minimum, big.NewInt(1))},
			err:     ledger.ErrInsufficientContribution,
			funded:  big.NewInt(0),
		},
		{
			name:    "at-minimum",
			amounts: []*big.Int{minimum},
			funded:  minimum,
			funders: 1,
		},
		{
			name:    "half-ether",
			amounts: []*big.Int{sendValue},
			funded:  sendValue,
			funders: 1,
		},
		{
			name:    "repeat-funder",
			amounts: []*big.Int{sendValue, sendValue, ether(2)},
			funded:  ether(3),
			funders: 1,
		},
	}

	t.Log("Given the need to record contributions.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen handling %s.", testID, tst.name)
				{
					l := newLedger(t)

					var err error
					for _, amount := range tst.amounts {
						if err = l.Fund(context.Background(), user, amount); err != nil {
							break
						}
					}

					if !errors.Is(err, tst.err) {
						t.Logf("\t\tTest %d:\tgot: %v", testID, err)
						t.Logf("\t\tTest %d:\texp: %v", testID, tst.err)
						t.Fatalf("\t%s\tTest %d:\tShould get the expected result.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get the expected result.", success, testID)

					if got := l.AddressToAmountFunded(user); got.Cmp(tst.funded) != 0 {
						t.Logf("\t\tTest %d:\tgot: %s", testID, got)
						t.Logf("\t\tTest %d:\texp: %s", testID, tst.funded)
						t.Fatalf("\t%s\tTest %d:\tShould update the amount funded.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould update the amount funded.", success, testID)

					if got := l.Balance(); got.Cmp(tst.funded) != 0 {
						t.Fatalf("\t%s\tTest %d:\tShould hold the sum of contributions, got %s.", failed, testID, got)
					}
					t.Logf("\t%s\tTest %d:\tShould hold the sum of contributions.", success, testID)

					if got := len(l.Funders()); got != tst.funders {
						t.Fatalf("\t%s\tTest %d:\tShould have %d funders, got %d.", failed, testID, tst.funders, got)
					}
					t.Logf("\t%s\tTest %d:\tShould have %d funders.", success, testID, tst.funders)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_Funders(t *testing.T) {
	t.Log("Given the need to track funders in order.")
	{
		l := newLedger(t)

		for _, funder := range []database.AccountID{user, other, user} {
			if err := l.Fund(context.Background(), funder, sendValue); err != nil {
				t.Fatalf("\t%s\tShould be able to fund: %s", failed, err)
			}
		}

		funder, err := l.Funder(0)
		if err != nil || funder != user {
			t.Fatalf("\t%s\tShould find the first funder at index 0: %v", failed, err)
		}
		t.Logf("\t%s\tShould find the first funder at index 0.", success)

		funder, err = l.Funder(1)
		if err != nil || funder != other {
			t.Fatalf("\t%s\tShould find the second funder at index 1: %v", failed, err)
		}
		t.Logf("\t%s\tShould find the second funder at index 1.", success)

		for _, index := range []int{-1, 2} {
			if _, err := l.Funder(index); !errors.Is(err, ledger.ErrIndexOutOfRange) {
				t.Fatalf("\t%s\tShould fail for index %d: %v", failed, index, err)
			}
		}
		t.Logf("\t%s\tShould fail for an invalid index.", success)
	}
}

func Test_Withdraw(t *testing.T) {
	t.Log("Given the need to withdraw the collected funds.")
	{
		l := newLedger(t)

		for _, funder := range []database.AccountID{user, other} {
			if err := l.Fund(context.Background(), funder, sendValue); err != nil {
				t.Fatalf("\t%s\tShould be able to fund: %s", failed, err)
			}
		}

		t.Log("\tWhen a non owner tries to withdraw.")
		{
			called := false
			transfer := func(to database.AccountID, amount *big.Int) error {
				called = true
				return nil
			}

			if _, err := l.Withdraw(user, transfer); !errors.Is(err, ledger.ErrNotOwner) {
				t.Fatalf("\t%s\tShould fail with not owner: %v", failed, err)
			}
			t.Logf("\t%s\tShould fail with not owner.", success)

			if called || l.Balance().Cmp(ether(1)) != 0 || len(l.Funders()) != 2 {
				t.Fatalf("\t%s\tShould leave the ledger untouched.", failed)
			}
			t.Logf("\t%s\tShould leave the ledger untouched.", success)
		}

		t.Log("\tWhen the transfer to the owner fails.")
		{
			transfer := func(to database.AccountID, amount *big.Int) error {
				return errors.New("transfer failed")
			}

			if _, err := l.Withdraw(owner, transfer); err == nil {
				t.Fatalf("\t%s\tShould fail the withdrawal.", failed)
			}
			t.Logf("\t%s\tShould fail the withdrawal.", success)

			if l.Balance().Cmp(ether(1)) != 0 || l.AddressToAmountFunded(user).Cmp(sendValue) != 0 {
				t.Fatalf("\t%s\tShould not clear any contributions.", failed)
			}
			t.Logf("\t%s\tShould not clear any contributions.", success)
		}

		t.Log("\tWhen the owner withdraws.")
		{
			var paidTo database.AccountID
			var paid *big.Int
			transfer := func(to database.AccountID, amount *big.Int) error {
				paidTo, paid = to, amount
				return nil
			}

			amount, err := l.Withdraw(owner, transfer)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to withdraw: %s", failed, err)
			}
			t.Logf("\t%s\tShould be able to withdraw.", success)

			if paidTo != owner || paid.Cmp(ether(1)) != 0 || amount.Cmp(ether(1)) != 0 {
				t.Fatalf("\t%s\tShould transfer the full balance to the owner, got %s to %s.", failed, paid, paidTo)
			}
			t.Logf("\t%s\tShould transfer the full balance to the owner.", success)

			if l.Balance().Sign() != 0 || len(l.Funders()) != 0 {
				t.Fatalf("\t%s\tShould empty the ledger.", failed)
			}
			t.Logf("\t%s\tShould empty the ledger.", success)

			for _, funder := range []database.AccountID{user, other} {
				if l.AddressToAmountFunded(funder).Sign() != 0 {
					t.Fatalf("\t%s\tShould reset %s to zero.", failed, funder)
				}
			}
			t.Logf("\t%s\tShould reset every funder to zero.", success)
		}

		t.Log("\tWhen the owner withdraws from an empty ledger.")
		{
			amount, err := l.Withdraw(owner, func(database.AccountID, *big.Int) error { return nil })
			if err != nil || amount.Sign() != 0 {
				t.Fatalf("\t%s\tShould transfer zero without error: %v", failed, err)
			}
			t.Logf("\t%s\tShould transfer zero without error.", success)
		}

		t.Log("\tWhen a funder contributes again after a withdrawal.")
		{
			if err := l.Fund(context.Background(), other, sendValue); err != nil {
				t.Fatalf("\t%s\tShould be able to fund: %s", failed, err)
			}

			funder, err := l.Funder(0)
			if err != nil || funder != other {
				t.Fatalf("\t%s\tShould start a new funder list: %v", failed, err)
			}
			t.Logf("\t%s\tShould start a new funder list.", success)
		}
	}
}

func Test_Snapshot(t *testing.T) {
	t.Log("Given the need to persist and restore a ledger.")
	{
		l := newLedger(t)
		if err := l.Fund(context.Background(), user, sendValue); err != nil {
			t.Fatalf("\t%s\tShould be able to fund: %s", failed, err)
		}

		state := l.Snapshot()
		restored, err := ledger.Restore(state, pricefeed.NewMock(8, pricefeed.DefaultInitialAnswer))
		if err != nil {
			t.Fatalf("\t%s\tShould be able to restore the ledger: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to restore the ledger.", success)

		if restored.AddressToAmountFunded(user).Cmp(sendValue) != 0 || restored.Balance().Cmp(sendValue) != 0 {
			t.Fatalf("\t%s\tShould restore the contributions.", failed)
		}
		t.Logf("\t%s\tShould restore the contributions.", success)

		state.Balance = ether(9)
		if _, err := ledger.Restore(state, pricefeed.NewMock(8, pricefeed.DefaultInitialAnswer)); err == nil {
			t.Fatalf("\t%s\tShould reject a state whose balance does not match.", failed)
		}
		t.Logf("\t%s\tShould reject a state whose balance does not match.", success)
	}
}
