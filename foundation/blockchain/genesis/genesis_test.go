package genesis_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/liquiduspro/noobchain/foundation/blockchain/genesis"
	"github.com/liquiduspro/noobchain/foundation/blockchain/ledger"
)

func TestLoad(t *testing.T) {
	gen, err := genesis.Load("../../../zblock/genesis.json")
	if err != nil {
		t.Fatalf("Should be able to load the genesis file: %v", err)
	}

	if gen.MinimumTransaction != ledger.Coin/10 {
		t.Fatalf("Should parse the minimum transaction, got %s", gen.MinimumTransaction)
	}

	if gen.InitialSupply != 100*ledger.Coin {
		t.Fatalf("Should parse the initial supply, got %s", gen.InitialSupply)
	}

	def := genesis.Default()
	if !gen.Date.Equal(def.Date) || gen.Difficulty != def.Difficulty || gen.TransPerBlock != def.TransPerBlock {
		t.Fatalf("Should match the default settings, got %+v", gen)
	}
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.json")
	if err := os.WriteFile(path, []byte(`{"trans_per_block": 0, "initial_supply": "100"}`), 0600); err != nil {
		t.Fatalf("Should be able to write the file: %v", err)
	}

	if _, err := genesis.Load(path); err == nil {
		t.Fatal("Should reject a genesis with no transactions per block.")
	}
}
