package selector_test

import (
	"testing"

	"github.com/liquiduspro/noobchain/foundation/blockchain/database"
	"github.com/liquiduspro/noobchain/foundation/blockchain/ledger"
	"github.com/liquiduspro/noobchain/foundation/blockchain/mempool/selector"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func pending(from string, seq uint64, value ledger.Amount) database.PendingTx {
	return database.PendingTx{
		Tx:  database.Tx{From: from, To: "0xbEE6ACE826eC3DE1B6349888B9151B92522F7F76", Value: value},
		Seq: seq,
	}
}

func group(txs []database.PendingTx) map[string][]database.PendingTx {
	m := make(map[string][]database.PendingTx)
	for _, tx := range txs {
		m[tx.From] = append(m[tx.From], tx)
	}
	return m
}

func TestSelect(t *testing.T) {
	type test struct {
		name     string
		strategy string
		howMany  int
		best     []uint64
	}

	txs := []database.PendingTx{
		pending("pavel", 1, 75*ledger.Coin/10),
		pending("bill", 2, 15*ledger.Coin),
		pending("ed", 3, 10*ledger.Coin),
		pending("bill", 7, 25*ledger.Coin),
		pending("pavel", 8, 20*ledger.Coin),
		pending("ed", 9, 75*ledger.Coin/10),
	}

	tt := []test{
		{name: "fifo first two", strategy: selector.StrategyFIFO, howMany: 2, best: []uint64{1, 2}},
		{name: "fifo all", strategy: selector.StrategyFIFO, howMany: -1, best: []uint64{1, 2, 3, 7, 8, 9}},
		{name: "fifo more than exists", strategy: selector.StrategyFIFO, howMany: 10, best: []uint64{1, 2, 3, 7, 8, 9}},
		{name: "value one from second row", strategy: selector.StrategyValue, howMany: 4, best: []uint64{1, 2, 3, 7}},
		{name: "value partial first row", strategy: selector.StrategyValue, howMany: 2, best: []uint64{2, 3}},
		{name: "value take all", strategy: selector.StrategyValue, howMany: -1, best: []uint64{1, 2, 3, 7, 8, 9}},
	}

	t.Log("Given the need to pick transactions from the mempool.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a set of transactions with %s.", testID, tst.strategy)
			{
				f := func(t *testing.T) {
					selectFn, err := selector.Retrieve(tst.strategy)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to get the strategy function: %s", failed, testID, err)
					}

					got := selectFn(group(txs), tst.howMany)
					if len(got) != len(tst.best) {
						t.Fatalf("\t%s\tTest %d:\tShould get %d transactions, got %d.", failed, testID, len(tst.best), len(got))
					}

					for i, tx := range got {
						if tx.Seq != tst.best[i] {
							t.Logf("\t%s\tTest %d:\tgot: %d", failed, testID, tx.Seq)
							t.Logf("\t%s\tTest %d:\texp: %d", failed, testID, tst.best[i])
							t.Fatalf("\t%s\tTest %d:\tShould get back the right transaction at %d.", failed, testID, i)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould get back the right transactions.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func TestSenderOrder(t *testing.T) {
	txs := []database.PendingTx{
		pending("bill", 1, ledger.Coin),
		pending("bill", 2, 50*ledger.Coin),
		pending("bill", 3, 99*ledger.Coin),
	}

	for _, strategy := range selector.Strategies() {
		selectFn, err := selector.Retrieve(strategy)
		if err != nil {
			t.Fatalf("%s: Should be able to get the strategy function: %s", strategy, err)
		}

		got := selectFn(group(txs), -1)
		for i := 1; i < len(got); i++ {
			if got[i].Seq < got[i-1].Seq {
				t.Fatalf("%s: Should keep the order for a single sender, got %d before %d", strategy, got[i-1].Seq, got[i].Seq)
			}
		}
	}
}

func TestUnknownStrategy(t *testing.T) {
	if _, err := selector.Retrieve("tip"); err == nil {
		t.Fatal("Should not find an unknown strategy.")
	}
}
