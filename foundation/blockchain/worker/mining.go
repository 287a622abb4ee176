package worker

import (
	"context"
	"errors"
	"time"

	"github.com/liquiduspro/noobchain/foundation/blockchain/database"
	"golang.org/x/sync/errgroup"
)

// miningOperations handles mining.
func (p *Pool) miningOperations() {
	p.evHandler("worker: miningOperations: G started")
	defer p.evHandler("worker: miningOperations: G completed")

	for {
		select {
		case <-p.startMining:
			if !p.isShutdown() {
				p.runMiningOperation()
			}
		case <-p.shut:
			p.evHandler("worker: miningOperations: received shut signal")
			return
		}
	}
}

// runMiningOperation mines enough blocks to drain the mempool.
func (p *Pool) runMiningOperation() {
	p.evHandler("worker: runMiningOperation: MINING: started")
	defer p.evHandler("worker: runMiningOperation: MINING: completed")

	// Make sure there are transactions in the mempool.
	length := p.state.QueryMempoolLength()
	if length == 0 {
		p.evHandler("worker: runMiningOperation: MINING: no transactions to mine: Txs[%d]", length)
		return
	}

	// After running a mining operation, check if a new operation should
	// be signaled again.
	defer func() {
		length := p.state.QueryMempoolLength()
		if length > 0 && !p.isShutdown() {
			p.evHandler("worker: runMiningOperation: MINING: signal new mining operation: Txs[%d]", length)
			p.SignalStartMining()
		}
	}()

	// Create a context so mining can be cancelled by a shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		select {
		case <-p.shut:
			p.evHandler("worker: runMiningOperation: MINING: CANCEL: requested")
			cancel()
		case <-ctx.Done():
		}
	}()

	perBlock := int(p.state.RetrieveGenesis().TransPerBlock)
	blocks := (length + perBlock - 1) / perBlock

	if err := p.Mine(ctx, blocks); err != nil {
		switch {
		case ctx.Err() != nil:
			p.evHandler("worker: runMiningOperation: MINING: CANCEL: complete")
		default:
			p.evHandler("worker: runMiningOperation: MINING: ERROR: %s", err)
		}
	}
}

// Mine appends numBlocks new blocks to the chain using the pool's workers.
// Each block is assembled from the mempool on top of the tip at the time the
// job starts. It returns once every block has been appended or on the first
// error.
func (p *Pool) Mine(ctx context.Context, numBlocks int) error {
	p.evHandler("worker: Mine: MINING: started: blocks[%d] workers[%d]", numBlocks, p.workers)
	defer p.evHandler("worker: Mine: MINING: completed")

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i := 0; i < numBlocks; i++ {
		if gCtx.Err() != nil {
			break
		}

		job := i
		g.Go(func() error {
			return p.mineBlock(gCtx, job)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	return ctx.Err()
}

// =============================================================================

// mineBlock assembles a block on the current tip and mines it until it's
// appended. When another miner wins the race the block is rebased on the
// new tip and mined again.
func (p *Pool) mineBlock(ctx context.Context, job int) error {
	block := p.state.AssembleBlock(p.state.TipHash())

	for {
		t := time.Now()
		err := block.Mine(ctx, p.state.Difficulty(), p.evHandler)
		p.hashes.Add(block.Nonce + 1)
		prometheusHashes.Add(float64(block.Nonce + 1))

		if err != nil {
			p.abandoned.Inc()
			prometheusDropped.Inc()
			if aerr := p.state.AbandonBlock(block); aerr != nil {
				p.evHandler("worker: mineBlock: job[%d]: WARNING: %s", job, aerr)
			}
			return err
		}

		prometheusMiningSeconds.Observe(time.Since(t).Seconds())

		err = p.state.AppendBlock(block)
		switch {
		case err == nil:
			p.mined.Inc()
			prometheusBlocksMined.Inc()
			p.evHandler("worker: mineBlock: job[%d]: MINING: appended: blk[%s]: trans[%d]", job, block.Hash, len(block.Trans))
			return nil

		case errors.Is(err, database.ErrStaleTip):
			p.stale.Inc()
			prometheusStaleRetries.Inc()
			p.evHandler("worker: mineBlock: job[%d]: MINING: stale tip, rebasing: %s", job, err)
			block = block.Rebase(p.state.TipHash())

		default:
			return err
		}
	}
}
