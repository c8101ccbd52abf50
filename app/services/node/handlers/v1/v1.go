// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/fundme/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/fundme/business/core/fundme"
	"github.com/ardanlabs/fundme/foundation/blockchain/state"
	"github.com/ardanlabs/fundme/foundation/events"
	"github.com/ardanlabs/fundme/foundation/fundme/gasreport"
	"github.com/ardanlabs/fundme/foundation/nameservice"
	"github.com/ardanlabs/fundme/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log    *zap.SugaredLogger
	State  *state.State
	NS     *nameservice.NameService
	Evts   *events.Events
	GasCfg gasreport.Config
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:    cfg.Log,
		State:  cfg.State,
		Core:   fundme.NewCore(cfg.Log, cfg.State),
		NS:     cfg.NS,
		WS:     websocket.Upgrader{},
		Evts:   cfg.Evts,
		GasCfg: cfg.GasCfg,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/genesis", pbl.Genesis)
	app.Handle(http.MethodGet, version, "/fundme", pbl.FundMe)
	app.Handle(http.MethodGet, version, "/fundme/pricefeed", pbl.PriceFeed)
	app.Handle(http.MethodGet, version, "/fundme/funded/:account", pbl.AmountFunded)
	app.Handle(http.MethodGet, version, "/fundme/funders/:index", pbl.Funder)
	app.Handle(http.MethodPost, version, "/tx/submit", pbl.SubmitCall)
	app.Handle(http.MethodGet, version, "/tx/receipts", pbl.Receipts)
	app.Handle(http.MethodGet, version, "/tx/receipts/:account", pbl.Receipts)
	app.Handle(http.MethodGet, version, "/accounts/list", pbl.Accounts)
	app.Handle(http.MethodGet, version, "/accounts/list/:account", pbl.Accounts)
	app.Handle(http.MethodGet, version, "/gas/report", pbl.GasReport)
}
