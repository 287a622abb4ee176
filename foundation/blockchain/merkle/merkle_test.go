package merkle_test

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/liquiduspro/noobchain/foundation/blockchain/merkle"
	"pgregory.net/rapid"
)

func sha(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// =============================================================================

func Test_Root(t *testing.T) {
	ab := sha("a" + "b")
	cd := sha("c" + "d")

	table := []struct {
		name string
		ids  []string
		exp  string
	}{
		{"empty", nil, ""},
		{"single", []string{"a"}, "a"},
		{"pair", []string{"a", "b"}, ab},
		{"odd promotes last", []string{"a", "b", "c"}, sha(ab + "c")},
		{"four", []string{"a", "b", "c", "d"}, sha(ab + cd)},
		{"five", []string{"a", "b", "c", "d", "e"}, sha(sha(ab+cd) + "e")},
	}

	for _, tst := range table {
		got := merkle.Root(tst.ids)
		if got != tst.exp {
			t.Errorf("%s: got %q, exp %q", tst.name, got, tst.exp)
		}
	}
}

func Test_RootIsOrderSensitive(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ids := rapid.SliceOfNDistinct(rapid.StringMatching(`[0-9a-f]{8}`), 2, 16, func(s string) string { return s }).Draw(t, "ids")

		root := merkle.Root(ids)
		if root != merkle.Root(ids) {
			t.Fatalf("root is not deterministic")
		}

		swapped := make([]string, len(ids))
		copy(swapped, ids)
		swapped[0], swapped[1] = swapped[1], swapped[0]

		if merkle.Root(swapped) == root {
			t.Fatalf("swapping the first two ids did not change the root")
		}
	})
}

func Test_Generate(t *testing.T) {
	tree := merkle.NewTree([]string{"a", "b"})
	tree.Generate([]string{"a", "b", "c"})

	if exp := merkle.Root([]string{"a", "b", "c"}); tree.RootHex() != exp {
		t.Fatalf("got %q, exp %q", tree.RootHex(), exp)
	}

	if len(tree.Values()) != 3 {
		t.Fatalf("Should hold the regenerated values: %v", tree.Values())
	}

	if tree.String() == "" {
		t.Fatalf("Should get a string representation.")
	}
}

func Test_HashStrategy(t *testing.T) {
	tree := merkle.NewTree([]string{"a", "b"}, merkle.WithHashStrategy(md5.New))

	h := md5.Sum([]byte("ab"))
	if exp := hex.EncodeToString(h[:]); tree.RootHex() != exp {
		t.Fatalf("got %q, exp %q", tree.RootHex(), exp)
	}
}

func Test_Proof(t *testing.T) {
	for n := 1; n <= 9; n++ {
		var ids []string
		for i := 0; i < n; i++ {
			ids = append(ids, sha(string(rune('a'+i))))
		}

		tree := merkle.NewTree(ids)
		for _, id := range ids {
			proof, err := tree.Proof(id)
			if err != nil {
				t.Fatalf("n=%d: Should get a proof for %s: %v", n, id, err)
			}

			if !tree.VerifyProof(id, proof) {
				t.Fatalf("n=%d: Should verify the proof for %s", n, id)
			}

			if tree.VerifyProof(sha("forged"), proof) {
				t.Fatalf("n=%d: Should not verify a forged id", n)
			}
		}

		if _, err := tree.Proof(sha("missing")); err == nil {
			t.Fatalf("n=%d: Should not get a proof for a missing id", n)
		}
	}
}
