package ledger_test

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/liquiduspro/noobchain/foundation/blockchain/ledger"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// =============================================================================

func Test_CRUD(t *testing.T) {
	t.Log("Given the need to manage unspent outputs.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen handling a single output.", testID)
		{
			l := ledger.New()
			out := ledger.NewOutput("0xbill", 100*ledger.Coin, "0")

			l.Put(out.ID, out)
			if !l.Contains(out.ID) {
				t.Fatalf("\t%s\tTest %d:\tShould contain the output after put.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould contain the output after put.", success, testID)

			got, err := l.Get(out.ID)
			if err != nil || got != out {
				t.Fatalf("\t%s\tTest %d:\tShould get back the same output: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get back the same output.", success, testID)

			removed, exists := l.Remove(out.ID)
			if !exists || removed != out {
				t.Fatalf("\t%s\tTest %d:\tShould remove the output.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould remove the output.", success, testID)

			if _, err := l.Get(out.ID); !errors.Is(err, ledger.ErrNotFound) {
				t.Fatalf("\t%s\tTest %d:\tShould get ErrNotFound after remove: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get ErrNotFound after remove.", success, testID)

			if _, exists := l.Remove(out.ID); exists {
				t.Fatalf("\t%s\tTest %d:\tShould not remove an output twice.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not remove an output twice.", success, testID)
		}
	}
}

func Test_Apply(t *testing.T) {
	l := ledger.New()
	a := ledger.NewOutput("0xbill", 60*ledger.Coin, "tx1")
	b := ledger.NewOutput("0xale", 40*ledger.Coin, "tx1")
	l.Put(a.ID, a)
	l.Put(b.ID, b)

	c := ledger.NewOutput("0xale", 10*ledger.Coin, "tx2")
	d := ledger.NewOutput("0xbill", 50*ledger.Coin, "tx2")

	t.Log("Given the need to apply updates atomically.")
	{
		err := l.Apply(ledger.Update{Add: []ledger.Output{c, d}, Remove: []string{a.ID, "missing"}})
		if !errors.Is(err, ledger.ErrNotFound) {
			t.Fatalf("\t%s\tShould reject an update with a missing input: %v", failed, err)
		}
		if l.Len() != 2 || !l.Contains(a.ID) || l.Contains(c.ID) {
			t.Fatalf("\t%s\tShould leave the ledger unchanged on failure.", failed)
		}
		t.Logf("\t%s\tShould leave the ledger unchanged on failure.", success)

		err = l.Apply(ledger.Update{Add: []ledger.Output{c, d}, Remove: []string{a.ID, a.ID}})
		if !errors.Is(err, ledger.ErrNotFound) {
			t.Fatalf("\t%s\tShould reject removing the same output twice: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject removing the same output twice.", success)

		if err := l.Apply(ledger.Update{Add: []ledger.Output{c, d}, Remove: []string{a.ID}}); err != nil {
			t.Fatalf("\t%s\tShould apply a valid update: %v", failed, err)
		}
		t.Logf("\t%s\tShould apply a valid update.", success)

		if got := l.Total(); got != 100*ledger.Coin {
			t.Fatalf("\t%s\tShould conserve the total: got %s", failed, got)
		}
		t.Logf("\t%s\tShould conserve the total.", success)

		if got := l.Balance("0xbill"); got != 50*ledger.Coin {
			t.Fatalf("\t%s\tShould have the right balance for bill: got %s", failed, got)
		}
		if got := l.Balance("0xale"); got != 50*ledger.Coin {
			t.Fatalf("\t%s\tShould have the right balance for ale: got %s", failed, got)
		}
		t.Logf("\t%s\tShould have the right balances.", success)

		if outs := l.QueryByOwner("0xale"); len(outs) != 2 || outs[0].ID > outs[1].ID {
			t.Fatalf("\t%s\tShould get ale's outputs ordered by id: %v", failed, outs)
		}
		t.Logf("\t%s\tShould get ale's outputs ordered by id.", success)
	}
}

func Test_ApplyContention(t *testing.T) {
	l := ledger.New()
	src := ledger.NewOutput("0xbill", 10*ledger.Coin, "0")
	l.Put(src.ID, src)

	const g = 16

	var wg sync.WaitGroup
	var mu sync.Mutex
	var wins int

	wg.Add(g)
	for i := 0; i < g; i++ {
		go func(i int) {
			defer wg.Done()

			out := ledger.NewOutput(fmt.Sprintf("0x%d", i), 10*ledger.Coin, fmt.Sprintf("tx%d", i))
			if err := l.Apply(ledger.Update{Add: []ledger.Output{out}, Remove: []string{src.ID}}); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("Should allow exactly one spend of the same output, got %d", wins)
	}

	if l.Total() != 10*ledger.Coin || l.Len() != 1 {
		t.Fatalf("Should conserve value under contention, total %s len %d", l.Total(), l.Len())
	}
}

func Test_Copy(t *testing.T) {
	l := ledger.New()
	out := ledger.NewOutput("0xbill", ledger.Coin, "0")
	l.Put(out.ID, out)

	snap := l.Copy()
	l.Remove(out.ID)

	if _, exists := snap[out.ID]; !exists {
		t.Fatalf("Should not see changes made after the copy.")
	}
}

func Test_Sequence(t *testing.T) {
	l := ledger.New()

	prev := l.NextSequence()
	for i := 0; i < 100; i++ {
		next := l.NextSequence()
		if next <= prev {
			t.Fatalf("Should get an increasing sequence, got %d after %d", next, prev)
		}
		prev = next
	}
}

func Test_Amount(t *testing.T) {
	table := []struct {
		in  string
		exp ledger.Amount
		str string
	}{
		{"100", 100 * ledger.Coin, "100.00000000"},
		{"0.1", ledger.Coin / 10, "0.10000000"},
		{".5", ledger.Coin / 2, "0.50000000"},
		{"60.", 60 * ledger.Coin, "60.00000000"},
		{"0.00000001", 1, "0.00000001"},
		{"-1.5", -(ledger.Coin + ledger.Coin/2), "-1.50000000"},
		{"92233720368.54775807", ledger.Amount(math.MaxInt64), "92233720368.54775807"},
	}

	for _, tst := range table {
		got, err := ledger.ParseAmount(tst.in)
		if err != nil {
			t.Fatalf("%q: Should parse: %v", tst.in, err)
		}
		if got != tst.exp {
			t.Fatalf("%q: got %d, exp %d", tst.in, got, tst.exp)
		}
		if got.String() != tst.str {
			t.Fatalf("%q: got %q, exp %q", tst.in, got.String(), tst.str)
		}
	}

	for _, bad := range []string{"", "abc", "1.123456789", "1e5", "--1", "99999999999999999999", "92233720368.99999999", "92233720368.54775808", "1.+5", "1.-5", "+1", "1. 5"} {
		if _, err := ledger.ParseAmount(bad); err == nil {
			t.Fatalf("%q: Should not parse.", bad)
		}
	}
}
