package network_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardanlabs/fundme/foundation/fundme/network"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const doc = `
networks:
  hardhat:
    chain_id: 31337
  sepolia:
    chain_id: 11155111
    rpc_url: ${FUNDME_TEST_RPC_URL}
    eth_usd_price_feed: "0x694AA1769357215DE4FAC081bf1f309aDC325306"
    block_confirmations: 6
mocks:
  decimals: 8
  initial_answer: "200000000000"
gas_reporter:
  enabled: true
  output_file: gas-report.txt
  no_colors: true
`

func Test_Parse(t *testing.T) {
	t.Log("Given the need to load the networks file.")
	{
		t.Setenv("FUNDME_TEST_RPC_URL", "https://rpc.example.com")

		cfg, err := network.Parse([]byte(doc))
		if err != nil {
			t.Fatalf("\t%s\tShould be able to parse the document: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to parse the document.", success)

		sepolia, err := cfg.Lookup("sepolia")
		if err != nil {
			t.Fatalf("\t%s\tShould find the sepolia network: %s", failed, err)
		}

		if sepolia.RPCURL != "https://rpc.example.com" || sepolia.BlockConfirms != 6 {
			t.Fatalf("\t%s\tShould expand environment variables, got %+v.", failed, sepolia)
		}
		t.Logf("\t%s\tShould expand environment variables.", success)

		answer, err := cfg.Mocks.Answer()
		if err != nil || answer.String() != "200000000000" {
			t.Fatalf("\t%s\tShould read the mock answer: %v", failed, err)
		}
		t.Logf("\t%s\tShould read the mock answer.", success)

		if cfg.MinimumUSD != 50 || cfg.GasReporter.Currency != "USD" || cfg.NamedAccounts["deployer"] != "deployer" {
			t.Fatalf("\t%s\tShould apply defaults, got %+v.", failed, cfg)
		}
		t.Logf("\t%s\tShould apply defaults.", success)

		if !network.IsDevelopment("hardhat") || network.IsDevelopment("sepolia") {
			t.Fatalf("\t%s\tShould know the development chains.", failed)
		}
		t.Logf("\t%s\tShould know the development chains.", success)
	}
}

func Test_ParseInvalid(t *testing.T) {
	t.Log("Given the need to reject a broken networks file.")
	{
		bad := `
networks:
  mainnet:
    chain_id: 1
mocks:
  initial_answer: "two thousand"
`
		_, err := network.Parse([]byte(bad))
		if err == nil {
			t.Fatalf("\t%s\tShould reject the document.", failed)
		}

		for _, want := range []string{"eth_usd_price_feed", "initial answer"} {
			if !strings.Contains(err.Error(), want) {
				t.Fatalf("\t%s\tShould report %q, got %s.", failed, want, err)
			}
		}
		t.Logf("\t%s\tShould report every problem.", success)
	}
}

func Test_LoadEnv(t *testing.T) {
	t.Log("Given the need to read network settings from env files.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen only .env.local exists.", testID)
		{
			const feed = "0x694AA1769357215DE4FAC081bf1f309aDC325306"
			const key = "FUNDME_TEST_LOCAL_FEED"

			dir := t.TempDir()
			t.Cleanup(func() { os.Unsetenv(key) })

			if err := os.WriteFile(filepath.Join(dir, ".env.local"), []byte(key+"="+feed+"\n"), 0600); err != nil {
				t.Fatal(err)
			}

			networks := "networks:\n  sepolia:\n    chain_id: 11155111\n    eth_usd_price_feed: ${" + key + "}\n"
			path := filepath.Join(dir, "networks.yaml")
			if err := os.WriteFile(path, []byte(networks), 0600); err != nil {
				t.Fatal(err)
			}

			if err := network.LoadEnv(filepath.Join(dir, ".env"), filepath.Join(dir, ".env.local")); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould skip the missing .env: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould skip the missing .env.", success, testID)

			cfg, err := network.Load(path)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould load the networks file: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould load the networks file.", success, testID)

			n, err := cfg.Lookup("sepolia")
			if err != nil || n.EthUSDPriceFeed != feed {
				t.Fatalf("\t%s\tTest %d:\tShould expand the feed from .env.local: got %q, %v", failed, testID, n.EthUSDPriceFeed, err)
			}
			t.Logf("\t%s\tTest %d:\tShould expand the feed from .env.local.", success, testID)
		}

		testID = 1
		t.Logf("\tTest %d:\tWhen an env file cannot be parsed.", testID)
		{
			path := filepath.Join(t.TempDir(), ".env")
			if err := os.WriteFile(path, []byte("FUNDME_TEST_BROKEN='unterminated\n"), 0600); err != nil {
				t.Fatal(err)
			}

			if err := network.LoadEnv(path); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould report the parse error.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould report the parse error.", success, testID)
		}
	}
}
