package state

import (
	"fmt"

	"github.com/liquiduspro/noobchain/foundation/blockchain/database"
)

// ValidateChain checks the hash, linkage, proof of work and merkle root of
// every block. It returns a *database.IntegrityError for the first violation.
func (s *State) ValidateChain() error {
	if err := s.db.Validate(); err != nil {
		s.evHandler("state: ValidateChain: ERROR: %s", err)
		return err
	}

	s.evHandler("state: ValidateChain: blocks[%d]: valid", s.db.Len())

	return nil
}

// ValidateLedger replays every block against a scratch ledger and compares
// the result with the live ledger. The comparison is only meaningful when
// no block is being assembled or mined.
func (s *State) ValidateLedger() error {
	replay, err := database.ReplayLedger(s.db.Copy())
	if err != nil {
		s.evHandler("state: ValidateLedger: ERROR: %s", err)
		return err
	}

	live := s.ledger.Copy()
	outputs := replay.Copy()

	if len(live) != len(outputs) {
		return fmt.Errorf("ledger has %d outputs, chain replay has %d", len(live), len(outputs))
	}

	for id, output := range outputs {
		got, exists := live[id]
		if !exists {
			return fmt.Errorf("output %s from chain replay is missing in the ledger", id)
		}
		if got != output {
			return fmt.Errorf("output %s differs between ledger and chain replay", id)
		}
	}

	s.evHandler("state: ValidateLedger: outputs[%d]: total[%s]: valid", len(outputs), replay.Total())

	return nil
}
