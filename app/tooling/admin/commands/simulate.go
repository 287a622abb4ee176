package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/liquiduspro/noobchain/foundation/blockchain/database"
	"github.com/liquiduspro/noobchain/foundation/blockchain/genesis"
	"github.com/liquiduspro/noobchain/foundation/blockchain/ledger"
	"github.com/liquiduspro/noobchain/foundation/blockchain/state"
	"github.com/liquiduspro/noobchain/foundation/blockchain/wallet"
	"github.com/liquiduspro/noobchain/foundation/blockchain/worker"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// SimulateConfig represents the settings for a simulation run.
type SimulateConfig struct {
	Parallel   bool
	Workers    int
	Blocks     int
	Difficulty uint16
	Minimum    ledger.Amount
	Supply     ledger.Amount
	Strategy   string
	Seed       int64
}

func simulateCmd(log *zap.SugaredLogger) *cobra.Command {
	var (
		cfg     SimulateConfig
		minimum string
		supply  string
	)

	cmd := cobra.Command{
		Use:   "simulate",
		Short: "Mine a chain of random transfers between two wallets and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg.Minimum, err = ledger.ParseAmount(minimum); err != nil {
				return err
			}
			if cfg.Supply, err = ledger.ParseAmount(supply); err != nil {
				return err
			}

			ev := func(v string, args ...any) {
				log.Debugw(fmt.Sprintf(v, args...))
			}

			return Simulate(cmd.Context(), cmd.OutOrStdout(), log, ev, cfg)
		},
	}

	cmd.Flags().BoolVar(&cfg.Parallel, "parallel", false, "Race a pool of miners for every block.")
	cmd.Flags().IntVar(&cfg.Workers, "workers", 0, "Number of miners, zero means one per cpu.")
	cmd.Flags().IntVar(&cfg.Blocks, "blocks", 10, "Number of blocks to mine after the genesis block.")
	cmd.Flags().Uint16Var(&cfg.Difficulty, "difficulty", 4, "Number of leading zeros a block hash needs.")
	cmd.Flags().StringVar(&minimum, "min", "0.1", "Smallest total input a transaction can spend.")
	cmd.Flags().StringVar(&supply, "supply", "100", "Coins minted to the first wallet.")
	cmd.Flags().StringVar(&cfg.Strategy, "strategy", "fifo", "Mempool select strategy.")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", time.Now().UnixNano(), "Seed for the random transfer amounts.")

	return &cmd
}

// Simulate builds a chain the way a node would. In sequential mode every
// block carries one transfer between the two wallets and is mined on its own.
// In parallel mode the blocks are mined in rounds of one block per worker
// and a single transfer is submitted before each round, so the miners race
// over it. The chain is validated and written to out as indented JSON.
func Simulate(ctx context.Context, out io.Writer, log *zap.SugaredLogger, ev state.EventHandler, cfg SimulateConfig) error {
	walletA, err := wallet.New()
	if err != nil {
		return err
	}

	walletB, err := wallet.New()
	if err != nil {
		return err
	}

	gen := genesis.Default()
	gen.Difficulty = cfg.Difficulty
	gen.MinimumTransaction = cfg.Minimum
	gen.InitialSupply = cfg.Supply

	start := time.Now()

	st, err := state.New(ctx, state.Config{
		Genesis:        gen,
		Beneficiary:    walletA.PublicKey,
		SelectStrategy: cfg.Strategy,
		EvHandler:      ev,
	})
	if err != nil {
		return err
	}
	defer st.Shutdown()

	workers := cfg.Workers
	if !cfg.Parallel {
		workers = 1
	}

	pool := worker.New(st, worker.Config{
		Workers:   workers,
		EvHandler: ev,
	})

	log.Infow("simulate", "status", "started", "parallel", cfg.Parallel, "workers", pool.Workers(), "blocks", cfg.Blocks, "difficulty", cfg.Difficulty)

	rng := rand.New(rand.NewSource(cfg.Seed))
	send := func(i int) {
		from, to := walletA, walletB
		if i%2 == 1 {
			from, to = walletB, walletA
		}

		value := ledger.Amount(rng.Int63n(int64(cfg.Supply)))

		tx, err := from.SendFunds(st, to.PublicKey, value)
		if err != nil {
			log.Infow("simulate", "status", "transfer skipped", "block", i+1, "value", value, "reason", err)
			return
		}

		if _, err := st.SubmitTransaction(tx); err != nil {
			log.Infow("simulate", "status", "transfer rejected", "block", i+1, "value", value, "reason", err)
		}
	}

	switch cfg.Parallel {
	case true:
		for round, mined := 0, 0; mined < cfg.Blocks; round++ {
			n := min(pool.Workers(), cfg.Blocks-mined)

			// Sends in the same round would pick the same unspent outputs.
			send(round)
			if err := pool.Mine(ctx, n); err != nil {
				return err
			}
			mined += n

			log.Infow("simulate", "round", round+1, "blocks", mined, "balanceA", walletA.Balance(st), "balanceB", walletB.Balance(st))
		}

	default:
		for i := 0; i < cfg.Blocks; i++ {
			send(i)
			if err := pool.Mine(ctx, 1); err != nil {
				return err
			}

			log.Infow("simulate", "block", i+1, "balanceA", walletA.Balance(st), "balanceB", walletB.Balance(st))
		}
	}

	stats := pool.Stats()
	log.Infow("simulate", "status", "completed", "elapsed", time.Since(start).String(), "mined", stats.Mined, "stale", stats.Stale, "hashes", stats.Hashes)

	valid := "valid"
	if err := st.ValidateChain(); err != nil {
		valid = err.Error()
	}
	if err := st.ValidateLedger(); err != nil {
		valid = err.Error()
	}

	snapshot := struct {
		Valid  string           `json:"valid"`
		Blocks []database.Block `json:"blocks"`
	}{
		Valid:  valid,
		Blocks: st.RetrieveBlocks(),
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}

	fmt.Fprintln(out, string(data))

	if valid != "valid" {
		return fmt.Errorf("chain not valid: %s", valid)
	}

	return nil
}
