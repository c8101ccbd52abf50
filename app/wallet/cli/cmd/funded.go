package cmd

import (
	"fmt"
	"log"

	"github.com/ardanlabs/fundme/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var fundedAccount string

var fundedCmd = &cobra.Command{
	Use:   "funded",
	Short: "Print the amount an account funded since the last withdrawal.",
	Run:   fundedRun,
}

func init() {
	rootCmd.AddCommand(fundedCmd)
	fundedCmd.Flags().StringVarP(&fundedAccount, "of", "o", "", "Account to look up, defaults to the wallet account.")
}

func fundedRun(cmd *cobra.Command, args []string) {
	accountID := database.AccountID(fundedAccount)
	if accountID == "" {
		privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
		if err != nil {
			log.Fatal(err)
		}
		accountID = database.PublicKeyToAccountID(privateKey.PublicKey)
	}

	var f funder
	if err := getJSON("/v1/fundme/funded/"+string(accountID), &f); err != nil {
		log.Fatal(err)
	}

	fmt.Println(f.Account, f.Ether, "ETH")
}
