package cmd

import (
	"log"
	"os"

	"github.com/ardanlabs/fundme/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var withdrawCmd = &cobra.Command{
	Use:   "withdraw",
	Short: "Withdraw the FundMe balance to the owner.",
	Run:   withdrawRun,
}

func init() {
	rootCmd.AddCommand(withdrawCmd)
}

func withdrawRun(cmd *cobra.Command, args []string) {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		log.Fatal(err)
	}

	log.Println("Withdrawing from contract...")

	rct, err := submit(privateKey, database.MethodWithdraw, nil)
	if rct.TxHash != "" {
		printReceipt(os.Stdout, rct)
	}
	if err != nil {
		log.Fatal(err)
	}

	log.Println("Got it back!")
}
