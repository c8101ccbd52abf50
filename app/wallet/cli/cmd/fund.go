package cmd

import (
	"log"
	"os"

	"github.com/ardanlabs/fundme/foundation/blockchain/database"
	"github.com/ardanlabs/fundme/foundation/fundme/units"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var value string

var fundCmd = &cobra.Command{
	Use:   "fund",
	Short: "Fund the FundMe contract.",
	Run:   fundRun,
}

func init() {
	rootCmd.AddCommand(fundCmd)
	fundCmd.Flags().StringVarP(&value, "value", "v", "0.5", "Amount of ETH to send.")
}

func fundRun(cmd *cobra.Command, args []string) {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		log.Fatal(err)
	}

	wei, err := units.ParseEther(value)
	if err != nil {
		log.Fatal(err)
	}

	log.Println("Funding contract...")

	rct, err := submit(privateKey, database.MethodFund, wei)
	if rct.TxHash != "" {
		printReceipt(os.Stdout, rct)
	}
	if err != nil {
		log.Fatal(err)
	}

	log.Println("Funded!")
}
