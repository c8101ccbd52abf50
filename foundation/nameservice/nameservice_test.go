package nameservice_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/fundme/foundation/blockchain/database"
	"github.com/ardanlabs/fundme/foundation/nameservice"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_NamedAccounts(t *testing.T) {
	t.Log("Given the need to look up the named accounts.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the folder holds the deployer key.", testID)
		{
			root := t.TempDir()
			key := "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
			if err := os.WriteFile(filepath.Join(root, "deployer.ecdsa"), []byte(key), 0600); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to write the key: %s", failed, testID, err)
			}

			ns, err := nameservice.New(root)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to load the folder: %s", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to load the folder.", success, testID)

			exp := database.AccountID("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

			accountID, err := ns.AccountID("deployer")
			if err != nil || accountID != exp {
				t.Fatalf("\t%s\tTest %d:\tShould resolve the deployer: got %s, err %v", failed, testID, accountID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould resolve the deployer.", success, testID)

			if ns.Lookup(exp) != "deployer" {
				t.Fatalf("\t%s\tTest %d:\tShould name the deployer account.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould name the deployer account.", success, testID)

			if _, err := ns.PrivateKey("user"); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould not find an unknown name.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not find an unknown name.", success, testID)
		}
	}
}
