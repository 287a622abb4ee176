package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/liquiduspro/noobchain/foundation/blockchain/genesis"
	"github.com/liquiduspro/noobchain/foundation/blockchain/ledger"
	"github.com/liquiduspro/noobchain/foundation/blockchain/state"
	"github.com/liquiduspro/noobchain/foundation/blockchain/wallet"
	"github.com/liquiduspro/noobchain/foundation/blockchain/worker"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func newState(t *testing.T, beneficiary wallet.Wallet, difficulty uint16) *state.State {
	t.Helper()

	gen := genesis.Default()
	gen.Difficulty = difficulty
	gen.TransPerBlock = 2

	st, err := state.New(context.Background(), state.Config{
		Genesis:        gen,
		Beneficiary:    beneficiary.PublicKey,
		SelectStrategy: "fifo",
	})
	if err != nil {
		t.Fatalf("Should be able to construct the state: %v", err)
	}

	return st
}

func newWallet(t *testing.T) wallet.Wallet {
	t.Helper()

	w, err := wallet.New()
	if err != nil {
		t.Fatalf("Should be able to create a wallet: %v", err)
	}
	return w
}

// logger collects events from the workers so the test output stays readable.
type logger struct {
	mu     sync.Mutex
	events int
}

func (l *logger) ev(v string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events++
}

// =============================================================================

func Test_Mine(t *testing.T) {
	alice := newWallet(t)
	bob := newWallet(t)
	st := newState(t, alice, 2)

	var log logger
	pool := worker.New(st, worker.Config{Workers: 4, EvHandler: log.ev})

	t.Log("Given the need to mine blocks with a pool of workers.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen four workers race for four blocks.", testID)
		{
			tx, err := alice.SendFunds(st, bob.PublicKey, 40*ledger.Coin)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to build the transaction: %v", failed, testID, err)
			}
			if _, err := st.SubmitTransaction(tx); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to submit the transaction: %v", failed, testID, err)
			}

			if err := pool.Mine(context.Background(), 4); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to mine: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to mine.", success, testID)

			if got := len(st.RetrieveBlocks()); got != 5 {
				t.Fatalf("\t%s\tTest %d:\tShould append exactly four blocks after genesis: got %d", failed, testID, got-1)
			}
			t.Logf("\t%s\tTest %d:\tShould append exactly four blocks after genesis.", success, testID)

			stats := pool.Stats()
			if stats.Mined != 4 {
				t.Fatalf("\t%s\tTest %d:\tShould count four mined blocks: got %d", failed, testID, stats.Mined)
			}
			t.Logf("\t%s\tTest %d:\tShould count four mined blocks, stale retries[%d].", success, testID, stats.Stale)

			if got := st.QueryBalance(bob.PublicKey); got != 40*ledger.Coin {
				t.Fatalf("\t%s\tTest %d:\tShould give bob 40: got %s", failed, testID, got)
			}
			t.Logf("\t%s\tTest %d:\tShould give bob 40.", success, testID)

			if err := st.ValidateChain(); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould have a valid chain: %v", failed, testID, err)
			}
			if err := st.ValidateLedger(); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould have a ledger matching the chain: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould validate.", success, testID)
		}
	}
}

func Test_MineCancelled(t *testing.T) {
	alice := newWallet(t)
	st := newState(t, alice, 1)

	pool := worker.New(st, worker.Config{Workers: 2})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := pool.Mine(ctx, 3); !errors.Is(err, context.Canceled) {
		t.Fatalf("Should stop when cancelled: %v", err)
	}

	if got := len(st.RetrieveBlocks()); got != 1 {
		t.Fatalf("Should not append blocks when cancelled: got %d", got)
	}
}

func Test_Run(t *testing.T) {
	alice := newWallet(t)
	bob := newWallet(t)
	st := newState(t, alice, 2)

	var log logger
	pool := worker.Run(st, worker.Config{Workers: 2, EvHandler: log.ev})

	t.Log("Given the need to mine submitted transactions in the background.")
	{
		tx, err := alice.SendFunds(st, bob.PublicKey, 15*ledger.Coin)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to build the transaction: %v", failed, err)
		}
		if _, err := st.SubmitTransaction(tx); err != nil {
			t.Fatalf("\t%s\tShould be able to submit the transaction: %v", failed, err)
		}

		deadline := time.Now().Add(10 * time.Second)
		for st.QueryBalance(bob.PublicKey) != 15*ledger.Coin || st.QueryMempoolLength() != 0 {
			if time.Now().After(deadline) {
				t.Fatalf("\t%s\tShould mine the transaction in the background.", failed)
			}
			time.Sleep(10 * time.Millisecond)
		}

		// Wait for the block holding the transaction to reach the chain.
		for len(st.QueryBlocksByOwner(bob.PublicKey)) == 0 {
			if time.Now().After(deadline) {
				t.Fatalf("\t%s\tShould append the block holding the transaction.", failed)
			}
			time.Sleep(10 * time.Millisecond)
		}
		t.Logf("\t%s\tShould mine the transaction in the background.", success)

		if err := st.Shutdown(); err != nil {
			t.Fatalf("\t%s\tShould be able to shutdown: %v", failed, err)
		}
		pool.Shutdown()
		t.Logf("\t%s\tShould be able to shutdown.", success)

		if err := st.ValidateLedger(); err != nil {
			t.Fatalf("\t%s\tShould have a ledger matching the chain: %v", failed, err)
		}
		t.Logf("\t%s\tShould have a ledger matching the chain.", success)
	}
}
