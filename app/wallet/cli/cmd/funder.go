package cmd

import (
	"fmt"
	"log"
	"strconv"

	"github.com/spf13/cobra"
)

var index int

var funderCmd = &cobra.Command{
	Use:   "funder",
	Short: "Print the funder at the index.",
	Run:   funderRun,
}

func init() {
	rootCmd.AddCommand(funderCmd)
	funderCmd.Flags().IntVarP(&index, "index", "i", 0, "Index into the list of funders.")
}

func funderRun(cmd *cobra.Command, args []string) {
	var f funder
	if err := getJSON("/v1/fundme/funders/"+strconv.Itoa(index), &f); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%d: %s (%s) %s ETH\n", f.Index, f.Account, f.Name, f.Ether)
}
