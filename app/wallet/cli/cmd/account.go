package cmd

import (
	"fmt"
	"log"

	"github.com/ardanlabs/fundme/foundation/blockchain/database"
	"github.com/ardanlabs/fundme/foundation/nameservice"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Print the account and its name for the specific wallet",
	Run:   accountRun,
}

func init() {
	rootCmd.AddCommand(accountCmd)
}

func accountRun(cmd *cobra.Command, args []string) {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		log.Fatal(err)
	}

	ns, err := nameservice.New(accountPath)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(describeAccount(ns, database.PublicKeyToAccountID(privateKey.PublicKey)))
}

// describeAccount renders the account with the name the key files give it.
func describeAccount(ns *nameservice.NameService, accountID database.AccountID) string {
	name := ns.Lookup(accountID)
	if name == string(accountID) {
		return string(accountID)
	}

	return fmt.Sprintf("%s (%s)", accountID, name)
}
