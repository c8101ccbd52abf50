package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/fundme/app/services/node/handlers"
	"github.com/ardanlabs/fundme/foundation/blockchain/database"
	"github.com/ardanlabs/fundme/foundation/blockchain/genesis"
	"github.com/ardanlabs/fundme/foundation/blockchain/state"
	"github.com/ardanlabs/fundme/foundation/blockchain/storage"
	"github.com/ardanlabs/fundme/foundation/blockchain/storage/disk"
	"github.com/ardanlabs/fundme/foundation/blockchain/storage/memory"
	"github.com/ardanlabs/fundme/foundation/events"
	"github.com/ardanlabs/fundme/foundation/fundme/deploy"
	"github.com/ardanlabs/fundme/foundation/fundme/gasreport"
	"github.com/ardanlabs/fundme/foundation/fundme/network"
	"github.com/ardanlabs/fundme/foundation/fundme/pricefeed"
	"github.com/ardanlabs/fundme/foundation/fundme/pricefeed/chainlink"
	"github.com/ardanlabs/fundme/foundation/logger"
	"github.com/ardanlabs/fundme/foundation/nameservice"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("NODE")
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

	// =========================================================================
	// Configuration

	// Values in the .env files are applied to the environment before the
	// configuration and the networks file are parsed.
	if err := network.LoadEnv(".env", ".env.local"); err != nil {
		return err
	}

	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			PublicHost      string        `conf:"default:0.0.0.0:8080"`
			CORSOrigins     []string      `conf:"default:*"`
		}
		State struct {
			Network     string `conf:"default:hardhat"`
			GenesisFile string `conf:"default:zblock/genesis.json"`
			Storage     string `conf:"default:disk"`
			DBPath      string `conf:"default:zblock/fundme.db"`
			Reset       bool   `conf:"default:false"`
		}
		Deploy struct {
			Tags []string `conf:"default:all"`
			Skip bool     `conf:"default:false"`
		}
		Networks struct {
			File string `conf:"default:zblock/networks.yaml"`
		}
		NameService struct {
			Folder string `conf:"default:zblock/accounts/"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "FundMe development node",
		},
	}

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
	const prefix = "FUNDME"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	fmt.Println(`  _____                 _ __  __      `)
	fmt.Println(` |  ___|   _ _ __   __| |  \/  | ___ `)
	fmt.Println(` | |_ | | | | '_ \ / _' | |\/| |/ _ \`)
	fmt.Println(` |  _|| |_| | | | | (_| | |  | |  __/`)
	fmt.Println(` |_|   \__,_|_| |_|\__,_|_|  |_|\___|`)
	fmt.Print("\n")

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	// Display the current configuration to the logs.
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Network Support

	netCfg, err := network.Load(cfg.Networks.File)
	if err != nil {
		return fmt.Errorf("loading networks: %w", err)
	}

	net, err := netCfg.Lookup(cfg.State.Network)
	if err != nil {
		return err
	}

	log.Infow("startup", "status", "network", "name", cfg.State.Network, "chainID", net.ChainID, "development", network.IsDevelopment(cfg.State.Network))

	// =========================================================================
	// Name Service Support

	// The nameservice package provides name resolution for account addresses.
	// The names come from the file names in the zblock/accounts folder.
	ns, err := nameservice.New(cfg.NameService.Folder)
	if err != nil {
		return fmt.Errorf("unable to load account name service: %w", err)
	}

	// Logging the accounts for documentation in the logs.
	for account, name := range ns.Copy() {
		log.Infow("startup", "status", "nameservice", "name", name, "account", account)
	}

	deployer, err := ns.AccountID(netCfg.NamedAccounts["deployer"])
	if err != nil {
		return fmt.Errorf("resolving deployer: %w", err)
	}

	// =========================================================================
	// Chain Support

	gen, err := genesis.Load(cfg.State.GenesisFile)
	if err != nil {
		return fmt.Errorf("loading genesis: %w", err)
	}

	if gen.ChainID != net.ChainID {
		return fmt.Errorf("genesis chain id %d does not match network %s chain id %d", gen.ChainID, cfg.State.Network, net.ChainID)
	}

	var strg storage.Store
	switch cfg.State.Storage {
	case "disk":
		d, err := disk.New(cfg.State.DBPath, log)
		if err != nil {
			return err
		}
		strg = d

	case "memory":
		strg = memory.New()

	default:
		return fmt.Errorf("unknown storage %q", cfg.State.Storage)
	}

	// Price feeds that are not mocks on this chain are read from the
	// network's rpc endpoint, the configured confirmations behind its head.
	var resolveFeed state.FeedResolver
	if net.RPCURL != "" {
		client, err := ethclient.Dial(net.RPCURL)
		if err != nil {
			return fmt.Errorf("dialing %s: %w", net.RPCURL, err)
		}
		defer client.Close()

		resolveFeed = func(address database.AccountID) (pricefeed.Feed, error) {
			return chainlink.New(client, string(address), net.BlockConfirms)
		}
	}

	// The chain packages accept a function of this signature to allow the
	// application to log. These raw messages are also sent to any websocket
	// client that is connected into the system through the events package.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.Send(s)
	}

	reporter := gasreport.New()

	st, err := state.New(state.Config{
		Genesis:     gen,
		Storage:     strg,
		Reporter:    reporter,
		ResolveFeed: resolveFeed,
		EvHandler:   ev,
	})
	if err != nil {
		return err
	}
	defer st.Shutdown()

	if cfg.State.Reset {
		if err := st.Reset(); err != nil {
			return fmt.Errorf("resetting chain: %w", err)
		}
	}

	// =========================================================================
	// Deployments

	if !cfg.Deploy.Skip {
		env := deploy.Env{
			Network:  cfg.State.Network,
			Config:   netCfg,
			Deployer: deployer,
			Chain:    st,
			Log:      ev,
		}

		deployments, err := deploy.Fixture(context.Background(), env, cfg.Deploy.Tags...)
		if err != nil {
			return fmt.Errorf("deploying: %w", err)
		}

		for name, dep := range deployments {
			log.Infow("startup", "status", "deployment", "name", name, "contract", dep.Contract, "address", dep.Address)
		}
	}

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	// Construct the mux for the debug calls.
	debugMux := handlers.DebugMux(build, log, st)

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing V1 public API support")

	// Construct the mux for the public API calls.
	publicMux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		State:    st,
		NS:       ns,
		Evts:     evts,
		GasCfg:   netCfg.GasReporter,
		Origins:  cfg.Web.CORSOrigins,
	})

	// Construct a server to service the requests against the mux.
	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      publicMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown public API started")
		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop public service gracefully: %w", err)
		}

		// Write the gas report the way the reporter is configured.
		if netCfg.GasReporter.Enabled {
			if dep, err := st.Deployment(deploy.NameFundMe); err == nil {
				rpt := st.GasReport(ctx, netCfg.GasReporter, dep.Address)
				if err := rpt.WriteFile(netCfg.GasReporter); err != nil {
					log.Errorw("shutdown", "status", "gas report", "ERROR", err)
				}
			}
		}
	}

	return nil
}
