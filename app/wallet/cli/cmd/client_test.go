package cmd

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardanlabs/fundme/app/services/node/handlers"
	"github.com/ardanlabs/fundme/foundation/blockchain/database"
	"github.com/ardanlabs/fundme/foundation/blockchain/genesis"
	"github.com/ardanlabs/fundme/foundation/blockchain/state"
	"github.com/ardanlabs/fundme/foundation/blockchain/storage/memory"
	"github.com/ardanlabs/fundme/foundation/events"
	"github.com/ardanlabs/fundme/foundation/fundme/deploy"
	"github.com/ardanlabs/fundme/foundation/fundme/network"
	"github.com/ardanlabs/fundme/foundation/nameservice"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/params"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	deployerKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	userKey     = "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
)

// startNode runs a node with the FundMe ledger deployed and points the
// wallet at it. The key files are written to a temp directory that is
// returned along with the keys.
func startNode(t *testing.T) (string, map[string]*ecdsa.PrivateKey) {
	dir := t.TempDir()

	keys := map[string]*ecdsa.PrivateKey{}
	for name, hex := range map[string]string{"deployer": deployerKey, "user": userKey} {
		pk, err := crypto.HexToECDSA(hex)
		if err != nil {
			t.Fatal(err)
		}
		if err := crypto.SaveECDSA(filepath.Join(dir, name+keyExtension), pk); err != nil {
			t.Fatal(err)
		}
		keys[name] = pk
	}

	ns, err := nameservice.New(dir)
	if err != nil {
		t.Fatal(err)
	}

	deployerID := database.PublicKeyToAccountID(keys["deployer"].PublicKey)
	userID := database.PublicKeyToAccountID(keys["user"].PublicKey)
	balance := new(big.Int).Mul(big.NewInt(10_000), big.NewInt(params.Ether))

	st, err := state.New(state.Config{
		Genesis: genesis.Default(map[string]*big.Int{
			string(deployerID): balance,
			string(userID):     new(big.Int).Set(balance),
		}),
		Storage: memory.New(),
	})
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := network.Parse([]byte("minimum_usd: 50\n"))
	if err != nil {
		t.Fatal(err)
	}

	env := deploy.Env{
		Network:  "hardhat",
		Config:   cfg,
		Deployer: deployerID,
		Chain:    st,
	}
	if _, err := deploy.Fixture(context.Background(), env, "all"); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(handlers.PublicMux(handlers.MuxConfig{
		Shutdown: make(chan os.Signal, 1),
		Log:      zap.NewNop().Sugar(),
		State:    st,
		NS:       ns,
		Evts:     events.New(),
		GasCfg:   cfg.GasReporter,
		Origins:  []string{"*"},
	}))
	t.Cleanup(srv.Close)

	prev := url
	url = srv.URL
	t.Cleanup(func() { url = prev })

	return dir, keys
}

// =============================================================================

func Test_Submit(t *testing.T) {
	t.Log("Given the need to sign and submit calls from the wallet.")
	{
		dir, keys := startNode(t)
		half := new(big.Int).Div(big.NewInt(params.Ether), big.NewInt(2))

		testID := 0
		t.Logf("\tTest %d:\tWhen the user funds 0.5 ETH twice.", testID)
		{
			for i := 0; i < 2; i++ {
				rct, err := submit(keys["user"], database.MethodFund, half)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould fund the ledger with call %d: %s", failed, testID, i, err)
				}
				if rct.TxHash == "" || rct.Status != database.StatusSucceeded || rct.Method != database.MethodFund {
					t.Fatalf("\t%s\tTest %d:\tShould return a succeeded receipt: %+v", failed, testID, rct)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould pick the next nonce for every call.", success, testID)

			var f funder
			if err := getJSON("/v1/fundme/funders/0", &f); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould read the first funder: %s", failed, testID, err)
			}
			if f.Name != "user" || f.Ether != "1" {
				t.Fatalf("\t%s\tTest %d:\tShould record 1 ETH from the user: %+v", failed, testID, f)
			}
			t.Logf("\t%s\tTest %d:\tShould record 1 ETH from the user.", success, testID)
		}

		testID = 1
		t.Logf("\tTest %d:\tWhen the user withdraws.", testID)
		{
			rct, err := submit(keys["user"], database.MethodWithdraw, nil)

			var ce *callError
			if !errors.As(err, &ce) || ce.status != http.StatusForbidden {
				t.Fatalf("\t%s\tTest %d:\tShould be refused with 403: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be refused with 403.", success, testID)

			if rct.TxHash == "" || rct.Status != database.StatusReverted || rct.GasUsed == 0 {
				t.Fatalf("\t%s\tTest %d:\tShould return the reverted receipt: %+v", failed, testID, rct)
			}
			t.Logf("\t%s\tTest %d:\tShould return the reverted receipt.", success, testID)

			var buf bytes.Buffer
			printReceipt(&buf, rct)
			if !strings.Contains(buf.String(), "reverted: ") || !strings.Contains(buf.String(), rct.TxHash) {
				t.Logf("\t\tTest %d:\tgot: %s", testID, buf.String())
				t.Fatalf("\t%s\tTest %d:\tShould print the revert.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould print the revert.", success, testID)
		}

		testID = 2
		t.Logf("\tTest %d:\tWhen the deployer withdraws.", testID)
		{
			rct, err := submit(keys["deployer"], database.MethodWithdraw, nil)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould withdraw: %s", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould withdraw.", success, testID)

			var buf bytes.Buffer
			printReceipt(&buf, rct)

			out := buf.String()
			for _, exp := range []string{"method:   withdraw", "value:    0 ETH", "status:   succeeded"} {
				if !strings.Contains(out, exp) {
					t.Logf("\t\tTest %d:\tgot: %s", testID, out)
					t.Fatalf("\t%s\tTest %d:\tShould print %q.", failed, testID, exp)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould print the receipt.", success, testID)

			var fm fundMe
			if err := getJSON("/v1/fundme", &fm); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould read the ledger: %s", failed, testID, err)
			}
			if fm.Ether != "0" || len(fm.Funders) != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould leave the ledger empty: %+v", failed, testID, fm)
			}
			t.Logf("\t%s\tTest %d:\tShould leave the ledger empty.", success, testID)
		}

		testID = 3
		t.Logf("\tTest %d:\tWhen describing the wallet account.", testID)
		{
			ns, err := nameservice.New(dir)
			if err != nil {
				t.Fatal(err)
			}

			userID := database.PublicKeyToAccountID(keys["user"].PublicKey)
			if got, exp := describeAccount(ns, userID), string(userID)+" (user)"; got != exp {
				t.Fatalf("\t%s\tTest %d:\tShould name the account, got %q exp %q.", failed, testID, got, exp)
			}
			t.Logf("\t%s\tTest %d:\tShould name the account.", success, testID)

			const unknown database.AccountID = "0x0000000000000000000000000000000000000001"
			if got := describeAccount(ns, unknown); got != string(unknown) {
				t.Fatalf("\t%s\tTest %d:\tShould print an unnamed account alone, got %q.", failed, testID, got)
			}
			t.Logf("\t%s\tTest %d:\tShould print an unnamed account alone.", success, testID)
		}
	}
}
