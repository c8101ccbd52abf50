package cmd

import (
	"fmt"
	"log"

	"github.com/ardanlabs/fundme/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your balance and the balance of the FundMe contract.",
	Run:   balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func balanceRun(cmd *cobra.Command, args []string) {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		log.Fatal(err)
	}

	accountID := database.PublicKeyToAccountID(privateKey.PublicKey)
	fmt.Println("For Account:", accountID)

	var acts accounts
	if err := getJSON("/v1/accounts/list/"+string(accountID), &acts); err != nil {
		log.Fatal(err)
	}

	if len(acts.Accounts) > 0 {
		fmt.Println("Balance:", acts.Accounts[0].Ether, "ETH")
		fmt.Println("Nonce:  ", acts.Accounts[0].Nonce)
	}

	var fm fundMe
	if err := getJSON("/v1/fundme", &fm); err != nil {
		log.Fatal(err)
	}

	fmt.Println("FundMe:", fm.Address, fm.Ether, "ETH")
}
