// This program performs administrative tasks against the FundMe node's
// disk store. The node must be stopped since badger holds a lock on the
// directory.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/fundme/app/tooling/admin/commands"
	"github.com/ardanlabs/fundme/foundation/blockchain/storage/disk"
	"github.com/ardanlabs/fundme/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	cfg := struct {
		conf.Version
		Args  conf.Args
		State struct {
			DBPath string `conf:"default:zblock/fundme.db"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "FundMe store administration",
		},
	}

	const prefix = "FUNDME"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	db, err := disk.New(cfg.State.DBPath, log)
	if err != nil {
		return err
	}
	defer db.Close()

	return processCommands(cfg.Args, db)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args conf.Args, db *disk.Disk) error {
	switch args.Num(0) {
	case "bals":
		if err := commands.Balances(os.Stdout, args.Num(1), db); err != nil {
			return fmt.Errorf("getting balances: %w", err)
		}

	case "receipts":
		if err := commands.Receipts(os.Stdout, args.Num(1), db); err != nil {
			return fmt.Errorf("getting receipts: %w", err)
		}

	default:
		fmt.Println("bals [account]:     show the balances in the last snapshot")
		fmt.Println("receipts [account]: show the receipts stored for the chain")
	}

	return nil
}
