package commands_test

import (
	"bytes"
	"math/big"
	"strings"
	"testing"

	"github.com/ardanlabs/fundme/app/tooling/admin/commands"
	"github.com/ardanlabs/fundme/foundation/blockchain/database"
	"github.com/ardanlabs/fundme/foundation/blockchain/storage"
	"github.com/ardanlabs/fundme/foundation/blockchain/storage/disk"
	"github.com/ardanlabs/fundme/foundation/fundme/ledger"
	"github.com/ethereum/go-ethereum/params"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	owner  database.AccountID = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	user   database.AccountID = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	fundMe database.AccountID = "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"
)

func newStore(t *testing.T) *disk.Disk {
	dsk, err := disk.New("", zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("\t%s\tShould be able to open an in-memory badger store: %s", failed, err)
	}
	t.Cleanup(func() { dsk.Close() })

	half := new(big.Int).Div(big.NewInt(params.Ether), big.NewInt(2))

	snapshot := storage.Snapshot{
		Accounts: map[database.AccountID]database.Account{
			owner: {AccountID: owner, Nonce: 3, Balance: big.NewInt(params.Ether)},
			user:  {AccountID: user, Nonce: 1, Balance: big.NewInt(2 * params.Ether)},
		},
		Deployments: []storage.Deployment{
			{Name: "FundMe", Contract: "FundMe", Address: fundMe, Deployer: owner},
		},
		Ledgers: map[database.AccountID]ledger.State{
			fundMe: {
				Owner:      owner,
				MinimumUSD: ledger.USD(50),
				Funded:     map[database.AccountID]*big.Int{user: half},
				Funders:    []database.AccountID{user},
				Balance:    half,
			},
		},
	}

	receipts := []database.Receipt{
		{TxHash: "0x01", From: owner, ContractAddress: fundMe, Contract: "FundMe", Value: big.NewInt(0), Status: database.StatusSucceeded},
		{TxHash: "0x02", From: user, To: fundMe, Method: "fund", Nonce: 0, Value: half, GasUsed: 21000, Status: database.StatusSucceeded},
		{TxHash: "0x03", From: owner, To: fundMe, Method: "withdraw", Nonce: 2, Value: big.NewInt(0), Status: database.StatusReverted, Error: "not owner"},
	}

	if err := dsk.Commit(snapshot, receipts...); err != nil {
		t.Fatalf("\t%s\tShould be able to commit to the store: %s", failed, err)
	}

	return dsk
}

// =============================================================================

func Test_Balances(t *testing.T) {
	type table struct {
		name    string
		account string
		exp     []string
		notExp  []string
		fail    bool
	}

	tt := []table{
		{
			name: "all",
			exp: []string{
				"Account: " + string(owner) + "  Nonce: 3  Balance: 1 ETH",
				"Account: " + string(user) + "  Nonce: 1  Balance: 2 ETH",
				"Contract: " + string(fundMe) + "  FundMe  Balance: 0.5 ETH  Funders: 1",
			},
		},
		{
			name:    "one account",
			account: strings.ToLower(string(user)),
			exp:     []string{"Account: " + string(user)},
			notExp:  []string{string(owner), "Contract:"},
		},
		{
			name:    "contract",
			account: string(fundMe),
			exp:     []string{"Contract: " + string(fundMe)},
			notExp:  []string{"Account:"},
		},
		{
			name:    "bad account",
			account: "0x1234",
			fail:    true,
		},
	}

	t.Log("Given the need to print the balances held in the store.")
	{
		store := newStore(t)

		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen handling %s.", testID, tst.name)
				{
					var buf bytes.Buffer
					err := commands.Balances(&buf, tst.account, store)

					if tst.fail {
						if err == nil {
							t.Fatalf("\t%s\tTest %d:\tShould reject the account.", failed, testID)
						}
						t.Logf("\t%s\tTest %d:\tShould reject the account.", success, testID)
						return
					}

					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould print the balances: %s", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould print the balances.", success, testID)

					out := buf.String()
					for _, exp := range tst.exp {
						if !strings.Contains(out, exp) {
							t.Logf("\t\tTest %d:\tgot: %s", testID, out)
							t.Fatalf("\t%s\tTest %d:\tShould contain %q.", failed, testID, exp)
						}
					}
					for _, notExp := range tst.notExp {
						if strings.Contains(out, notExp) {
							t.Logf("\t\tTest %d:\tgot: %s", testID, out)
							t.Fatalf("\t%s\tTest %d:\tShould not contain %q.", failed, testID, notExp)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould print only the requested entries.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_Receipts(t *testing.T) {
	t.Log("Given the need to print the receipts held in the store.")
	{
		store := newStore(t)

		testID := 0
		t.Logf("\tTest %d:\tWhen printing every receipt.", testID)
		{
			var buf bytes.Buffer
			if err := commands.Receipts(&buf, "", store); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould print the receipts: %s", failed, testID, err)
			}

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			if len(lines) != 3 {
				t.Fatalf("\t%s\tTest %d:\tShould print 3 receipts, got %d.", failed, testID, len(lines))
			}
			t.Logf("\t%s\tTest %d:\tShould print 3 receipts.", success, testID)

			for i, exp := range []string{"Tx: 0x01", "Tx: 0x02", "Tx: 0x03"} {
				if !strings.HasPrefix(lines[i], exp) {
					t.Fatalf("\t%s\tTest %d:\tShould keep the commit order, got %q at %d.", failed, testID, lines[i], i)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould keep the commit order.", success, testID)

			if !strings.Contains(lines[0], "Method: receive") {
				t.Fatalf("\t%s\tTest %d:\tShould name a call without a method receive: %q", failed, testID, lines[0])
			}
			if !strings.Contains(lines[1], "Value: 0.5 ETH  Gas: 21000  Status: 1") {
				t.Fatalf("\t%s\tTest %d:\tShould print the value and gas: %q", failed, testID, lines[1])
			}
			if !strings.Contains(lines[2], "Status: 0 not owner") {
				t.Fatalf("\t%s\tTest %d:\tShould print the revert reason: %q", failed, testID, lines[2])
			}
			t.Logf("\t%s\tTest %d:\tShould print the receipt details.", success, testID)
		}

		testID = 1
		t.Logf("\tTest %d:\tWhen printing the receipts of the user.", testID)
		{
			var buf bytes.Buffer
			if err := commands.Receipts(&buf, string(user), store); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould print the receipts: %s", failed, testID, err)
			}

			out := strings.TrimSpace(buf.String())
			if strings.Count(out, "\n") != 0 || !strings.HasPrefix(out, "Tx: 0x02") {
				t.Logf("\t\tTest %d:\tgot: %s", testID, out)
				t.Fatalf("\t%s\tTest %d:\tShould print only the user's receipt.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould print only the user's receipt.", success, testID)
		}

		testID = 2
		t.Logf("\tTest %d:\tWhen printing the receipts of the contract.", testID)
		{
			var buf bytes.Buffer
			if err := commands.Receipts(&buf, string(fundMe), store); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould print the receipts: %s", failed, testID, err)
			}

			if n := strings.Count(buf.String(), "Tx: "); n != 3 {
				t.Fatalf("\t%s\tTest %d:\tShould match the deployment and calls to the contract, got %d.", failed, testID, n)
			}
			t.Logf("\t%s\tTest %d:\tShould match the deployment and calls to the contract.", success, testID)
		}
	}
}
