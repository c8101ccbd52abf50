// Package deploy runs the deployment scripts that put the FundMe ledger
// and, on development networks, its mock price feed on a chain.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"slices"

	"github.com/ardanlabs/fundme/foundation/blockchain/database"
	"github.com/ardanlabs/fundme/foundation/blockchain/storage"
	"github.com/ardanlabs/fundme/foundation/fundme/ledger"
	"github.com/ardanlabs/fundme/foundation/fundme/network"
)

// Names the scripts deploy contracts under.
const (
	NameMockV3Aggregator = "MockV3Aggregator"
	NameFundMe           = "FundMe"
)

// Chain represents the behavior required of a chain the scripts can deploy
// contracts to.
type Chain interface {
	DeployMock(deployer database.AccountID, name string, decimals uint8, initialAnswer *big.Int) (storage.Deployment, error)
	DeployFundMe(ctx context.Context, deployer database.AccountID, name string, priceFeed database.AccountID, minimumUSD *big.Int) (storage.Deployment, error)
	Deployment(name string) (storage.Deployment, error)
	Deployments() []storage.Deployment
}

// Logger is called with the progress of the scripts.
type Logger func(v string, args ...any)

// Env is what a script is given to run against.
type Env struct {
	Network  string
	Config   network.Config
	Deployer database.AccountID
	Chain    Chain
	Log      Logger
}

func (env Env) log(v string, args ...any) {
	if env.Log != nil {
		env.Log(v, args...)
	}
}

// Script is a single deployment step.
type Script struct {
	Name string
	Tags []string
	Run  func(ctx context.Context, env Env) error
}

// Matches reports whether the script carries any of the tags. No tags
// matches every script.
func (s Script) Matches(tags ...string) bool {
	if len(tags) == 0 {
		return true
	}

	for _, tag := range tags {
		if slices.Contains(s.Tags, tag) {
			return true
		}
	}

	return false
}

// Scripts are run in this order.
var Scripts = []Script{
	{
		Name: "00-deploy-mocks",
		Tags: []string{"all", "mocks"},
		Run:  deployMocks,
	},
	{
		Name: "01-deploy-fund-me",
		Tags: []string{"all", "fundme"},
		Run:  deployFundMe,
	},
}

// =============================================================================

// Deployments is the registry of deployed contracts by name.
type Deployments map[string]storage.Deployment

// Get returns the named deployment.
func (d Deployments) Get(name string) (storage.Deployment, error) {
	dep, exists := d[name]
	if !exists {
		return storage.Deployment{}, fmt.Errorf("no deployment named %q", name)
	}
	return dep, nil
}

// Fixture runs every script matching the tags and returns the registry of
// deployments on the chain once they finish. Contracts that are already
// deployed under a script's name are reused.
func Fixture(ctx context.Context, env Env, tags ...string) (Deployments, error) {
	if env.Chain == nil {
		return nil, errors.New("chain is required")
	}

	if !env.Deployer.IsAccountID() {
		return nil, fmt.Errorf("invalid deployer %q", env.Deployer)
	}

	for _, script := range Scripts {
		if !script.Matches(tags...) {
			continue
		}

		if err := script.Run(ctx, env); err != nil {
			return nil, fmt.Errorf("script %s: %w", script.Name, err)
		}
	}

	deployments := make(Deployments)
	for _, dep := range env.Chain.Deployments() {
		deployments[dep.Name] = dep
	}

	return deployments, nil
}

// =============================================================================

func deployMocks(ctx context.Context, env Env) error {
	if !network.IsDevelopment(env.Network) {
		return nil
	}

	env.log("Local networks detected. Deploying mocks.")

	if dep, err := env.Chain.Deployment(NameMockV3Aggregator); err == nil {
		env.log("reusing %q at %s", dep.Name, dep.Address)
		return nil
	}

	answer, err := env.Config.Mocks.Answer()
	if err != nil {
		return err
	}

	dep, err := env.Chain.DeployMock(env.Deployer, NameMockV3Aggregator, env.Config.Mocks.Decimals, answer)
	if err != nil {
		return err
	}

	env.log("deployed %q (contract: %s) at %s", dep.Name, dep.Contract, dep.Address)
	env.log("Mocks deployed.")
	env.log("------------------------------------")

	return nil
}

func deployFundMe(ctx context.Context, env Env) error {
	if dep, err := env.Chain.Deployment(NameFundMe); err == nil {
		env.log("reusing %q at %s", dep.Name, dep.Address)
		return nil
	}

	var priceFeed database.AccountID

	switch {
	case network.IsDevelopment(env.Network):
		mock, err := env.Chain.Deployment(NameMockV3Aggregator)
		if err != nil {
			return fmt.Errorf("mock price feed: %w", err)
		}
		priceFeed = mock.Address

	default:
		n, err := env.Config.Lookup(env.Network)
		if err != nil {
			return err
		}

		priceFeed, err = database.ToAccountID(n.EthUSDPriceFeed)
		if err != nil {
			return fmt.Errorf("network %s price feed: %w", env.Network, err)
		}

		env.log("Reading price feed %s %d blocks behind the head of %s", priceFeed, n.BlockConfirms, env.Network)
	}

	var minimumUSD *big.Int
	if env.Config.MinimumUSD > 0 {
		minimumUSD = ledger.USD(env.Config.MinimumUSD)
	}

	env.log("Deploying FundMe and waiting for confirmations...")

	dep, err := env.Chain.DeployFundMe(ctx, env.Deployer, NameFundMe, priceFeed, minimumUSD)
	if err != nil {
		return err
	}

	env.log("FundMe deployed at %s with price feed %s", dep.Address, priceFeed)
	env.log("------------------------------------")

	return nil
}
