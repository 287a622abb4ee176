// Package worker implements the pool of miners for the blockchain. Every
// miner races to extend the chain tip and retries on top of the new tip when
// another miner wins.
package worker

import (
	"runtime"
	"sync"

	"github.com/liquiduspro/noobchain/foundation/blockchain/state"
	"go.uber.org/atomic"
)

// Config represents the settings for the pool of miners.
type Config struct {
	Workers   int
	EvHandler state.EventHandler
}

// Stats represents the counters the pool keeps while mining.
type Stats struct {
	Mined     uint64 `json:"mined"`
	Stale     uint64 `json:"stale"`
	Abandoned uint64 `json:"abandoned"`
	Hashes    uint64 `json:"hashes"`
}

// =============================================================================

// Pool manages the POW workflows for the blockchain.
type Pool struct {
	state       *state.State
	workers     int
	wg          sync.WaitGroup
	shut        chan struct{}
	shutOnce    sync.Once
	startMining chan bool
	evHandler   state.EventHandler

	mined     *atomic.Uint64
	stale     *atomic.Uint64
	abandoned *atomic.Uint64
	hashes    *atomic.Uint64
}

// New constructs a pool of miners for the state. Zero workers means one per
// cpu.
func New(st *state.State, cfg Config) *Pool {
	initPrometheusMetrics()

	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &Pool{
		state:       st,
		workers:     workers,
		shut:        make(chan struct{}),
		startMining: make(chan bool, 1),
		evHandler:   ev,

		mined:     atomic.NewUint64(0),
		stale:     atomic.NewUint64(0),
		abandoned: atomic.NewUint64(0),
		hashes:    atomic.NewUint64(0),
	}
}

// Run creates a pool, registers the pool with the state package, and
// starts up the background mining process.
func Run(st *state.State, cfg Config) *Pool {
	p := New(st, cfg)

	// Register this pool with the state package.
	st.Worker = p

	p.wg.Add(1)

	// We don't want to return until we know the G is up and running.
	hasStarted := make(chan bool)

	go func() {
		defer p.wg.Done()
		hasStarted <- true
		p.miningOperations()
	}()

	<-hasStarted

	return p
}

// Workers returns the number of miners racing for each block.
func (p *Pool) Workers() int {
	return p.workers
}

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Mined:     p.mined.Load(),
		Stale:     p.stale.Load(),
		Abandoned: p.abandoned.Load(),
		Hashes:    p.hashes.Load(),
	}
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutine performing work. Any block being mined is
// cancelled.
func (p *Pool) Shutdown() {
	p.evHandler("worker: shutdown: started")
	defer p.evHandler("worker: shutdown: completed")

	p.evHandler("worker: shutdown: terminate goroutines")
	p.shutOnce.Do(func() { close(p.shut) })
	p.wg.Wait()
}

// SignalStartMining starts a mining operation. If there is already a signal
// pending in the channel, just return since a mining operation will start.
func (p *Pool) SignalStartMining() {
	select {
	case p.startMining <- true:
	default:
	}
	p.evHandler("worker: SignalStartMining: mining signaled")
}

// =============================================================================

// isShutdown is used to test if a shutdown has been signaled.
func (p *Pool) isShutdown() bool {
	select {
	case <-p.shut:
		return true
	default:
		return false
	}
}
