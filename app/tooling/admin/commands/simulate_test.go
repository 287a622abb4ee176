package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/liquiduspro/noobchain/app/tooling/admin/commands"
	"github.com/liquiduspro/noobchain/foundation/blockchain/database"
	"github.com/liquiduspro/noobchain/foundation/blockchain/ledger"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestSimulate(t *testing.T) {
	type table struct {
		name     string
		parallel bool
	}

	tt := []table{
		{"sequential", false},
		{"parallel", true},
	}

	t.Log("Given the need to simulate a chain of transfers.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen running a %s simulation.", testID, tst.name)
				{
					cfg := commands.SimulateConfig{
						Parallel:   tst.parallel,
						Workers:    4,
						Blocks:     6,
						Difficulty: 1,
						Minimum:    ledger.Coin / 10,
						Supply:     100 * ledger.Coin,
						Strategy:   "fifo",
						Seed:       42,
					}

					var out bytes.Buffer
					if err := commands.Simulate(context.Background(), &out, zap.NewNop().Sugar(), nil, cfg); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to simulate : %s", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to simulate.", success, testID)

					var snapshot struct {
						Valid  string           `json:"valid"`
						Blocks []database.Block `json:"blocks"`
					}
					if err := json.Unmarshal(out.Bytes(), &snapshot); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould print the chain as JSON : %s", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould print the chain as JSON.", success, testID)

					if snapshot.Valid != "valid" {
						t.Fatalf("\t%s\tTest %d:\tShould print a valid chain : %s", failed, testID, snapshot.Valid)
					}
					t.Logf("\t%s\tTest %d:\tShould print a valid chain.", success, testID)

					if len(snapshot.Blocks) != cfg.Blocks+1 {
						t.Fatalf("\t%s\tTest %d:\tShould mine %d blocks after genesis : got %d", failed, testID, cfg.Blocks, len(snapshot.Blocks)-1)
					}
					t.Logf("\t%s\tTest %d:\tShould mine %d blocks after genesis.", success, testID, cfg.Blocks)

					var transfers int
					for _, block := range snapshot.Blocks[1:] {
						transfers += len(block.Trans)
					}
					if transfers == 0 {
						t.Fatalf("\t%s\tTest %d:\tShould carry transfers in the mined blocks.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould carry %d transfers in the mined blocks.", success, testID, transfers)

					if _, err := database.ReplayLedger(snapshot.Blocks); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould replay the printed chain : %s", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould replay the printed chain.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}
