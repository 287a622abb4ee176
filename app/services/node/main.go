package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/liquiduspro/noobchain/app/services/node/handlers"
	"github.com/liquiduspro/noobchain/foundation/blockchain/genesis"
	"github.com/liquiduspro/noobchain/foundation/blockchain/ledger"
	"github.com/liquiduspro/noobchain/foundation/blockchain/signature"
	"github.com/liquiduspro/noobchain/foundation/blockchain/state"
	"github.com/liquiduspro/noobchain/foundation/blockchain/wallet"
	"github.com/liquiduspro/noobchain/foundation/blockchain/worker"
	"github.com/liquiduspro/noobchain/foundation/events"
	"github.com/liquiduspro/noobchain/foundation/logger"
	"github.com/liquiduspro/noobchain/foundation/nameservice"
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

	// This is all the configuration for the application and the default values.
	// Configuration values will be passed through the application as individual
	// values.
	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			PublicHost      string        `conf:"default:0.0.0.0:8080"`
		}
		State struct {
			Beneficiary        string `conf:"default:alice"`
			Genesis            string
			Difficulty         uint16 `conf:"default:4"`
			TransPerBlock      uint16 `conf:"default:20"`
			MinimumTransaction string `conf:"default:0.1"`
			InitialSupply      string `conf:"default:100"`
			Workers            int    `conf:"default:0"`
			SelectStrategy     string `conf:"default:fifo"`
		}
		NameService struct {
			Folder string `conf:"default:zblock/accounts/"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "noobchain proof of work node",
		},
	}

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
	const prefix = "NODE"
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

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	// Display the current configuration to the logs.
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// A failing crypto backend makes every signature on the chain suspect.
	if err := signature.SelfTest(); err != nil {
		return err
	}

	// =========================================================================
	// Name Service Support

	// The beneficiary receives the initial supply. Its key is created the
	// first time the node runs so the wallet cli can spend from it.
	path := filepath.Join(cfg.NameService.Folder, cfg.State.Beneficiary+".ecdsa")
	beneficiary, err := loadOrCreate(path)
	if err != nil {
		return fmt.Errorf("unable to load beneficiary wallet: %w", err)
	}

	// The nameservice package provides name resolution for public keys.
	// The names come from the file names in the zblock/accounts folder.
	ns, err := nameservice.New(cfg.NameService.Folder)
	if err != nil {
		return fmt.Errorf("unable to load account name service: %w", err)
	}

	// Logging the accounts for documentation in the logs.
	for publicKey, name := range ns.Copy() {
		log.Infow("startup", "status", "nameservice", "name", name, "publickey", publicKey)
	}

	// =========================================================================
	// Blockchain Support

	gen, err := loadGenesis(cfg.State.Genesis, cfg.State.Difficulty, cfg.State.TransPerBlock, cfg.State.MinimumTransaction, cfg.State.InitialSupply)
	if err != nil {
		return err
	}

	// The blockchain packages accept a function of this signature to allow the
	// application to log. For now, these raw messages are sent to any websocket
	// client that is connected into the system through the events package.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.Send(s)
	}

	// The state value represents the blockchain node and manages the blockchain
	// database and provides an API for application support. The genesis block
	// is mined before New returns.
	st, err := state.New(context.Background(), state.Config{
		Genesis:        gen,
		Beneficiary:    beneficiary.PublicKey,
		SelectStrategy: cfg.State.SelectStrategy,
		EvHandler:      ev,
	})
	if err != nil {
		return err
	}
	defer st.Shutdown()

	// The worker package implements the pool of miners. The pool will
	// register itself with the state.
	pool := worker.Run(st, worker.Config{
		Workers:   cfg.State.Workers,
		EvHandler: ev,
	})

	log.Infow("startup", "status", "miner pool started", "workers", pool.Workers(), "difficulty", st.Difficulty())

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	// The Debug function returns a mux to listen and serve on for all the debug
	// related endpoints. This includes the standard library endpoints.

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
		Pool:     pool,
		NS:       ns,
		Evts:     evts,
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
	}

	return nil
}

// loadGenesis reads the genesis file when one is configured. Otherwise the
// defaults are used with the configured chain settings.
func loadGenesis(path string, difficulty uint16, transPerBlock uint16, minimum string, supply string) (genesis.Genesis, error) {
	if path != "" {
		return genesis.Load(path)
	}

	gen := genesis.Default()
	gen.Difficulty = difficulty
	gen.TransPerBlock = transPerBlock

	var err error
	if gen.MinimumTransaction, err = ledger.ParseAmount(minimum); err != nil {
		return genesis.Genesis{}, fmt.Errorf("minimum transaction: %w", err)
	}

	if gen.InitialSupply, err = ledger.ParseAmount(supply); err != nil {
		return genesis.Genesis{}, fmt.Errorf("initial supply: %w", err)
	}

	if err := gen.Validate(); err != nil {
		return genesis.Genesis{}, err
	}

	return gen, nil
}

// loadOrCreate loads the wallet stored at the path, generating and saving a
// new one when the file doesn't exist.
func loadOrCreate(path string) (wallet.Wallet, error) {
	w, err := wallet.Load(path)
	if err == nil {
		return w, nil
	}

	if !errors.Is(err, fs.ErrNotExist) {
		return wallet.Wallet{}, err
	}

	if w, err = wallet.New(); err != nil {
		return wallet.Wallet{}, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return wallet.Wallet{}, err
	}

	if err := w.Save(path); err != nil {
		return wallet.Wallet{}, err
	}

	return w, nil
}
