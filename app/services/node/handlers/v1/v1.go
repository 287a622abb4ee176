// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/liquiduspro/noobchain/app/services/node/handlers/v1/public"
	"github.com/liquiduspro/noobchain/foundation/blockchain/state"
	"github.com/liquiduspro/noobchain/foundation/blockchain/worker"
	"github.com/liquiduspro/noobchain/foundation/events"
	"github.com/liquiduspro/noobchain/foundation/nameservice"
	"github.com/liquiduspro/noobchain/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	Pool  *worker.Pool
	NS    *nameservice.NameService
	Evts  *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		Pool:  cfg.Pool,
		NS:    cfg.NS,
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/genesis/list", pbl.Genesis)
	app.Handle(http.MethodGet, version, "/balances/list", pbl.Balances)
	app.Handle(http.MethodGet, version, "/balances/list/:owner", pbl.Balances)
	app.Handle(http.MethodGet, version, "/outputs/list/:owner", pbl.Outputs)
	app.Handle(http.MethodGet, version, "/blocks/list", pbl.BlocksByOwner)
	app.Handle(http.MethodGet, version, "/blocks/list/:owner", pbl.BlocksByOwner)
	app.Handle(http.MethodGet, version, "/blocks/number/:from/:to", pbl.BlocksByNumber)
	app.Handle(http.MethodGet, version, "/tx/uncommitted/list", pbl.Mempool)
	app.Handle(http.MethodGet, version, "/tx/uncommitted/list/:owner", pbl.Mempool)
	app.Handle(http.MethodPost, version, "/tx/submit", pbl.SubmitTransaction)
	app.Handle(http.MethodGet, version, "/chain/validate", pbl.ValidateChain)
	app.Handle(http.MethodGet, version, "/mining/stats", pbl.MiningStats)
	app.Handle(http.MethodGet, version, "/mining/signal", pbl.SignalMining)
}
