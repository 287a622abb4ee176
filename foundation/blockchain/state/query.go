package state

import (
	"github.com/liquiduspro/noobchain/foundation/blockchain/database"
	"github.com/liquiduspro/noobchain/foundation/blockchain/ledger"
)

// QueryLastest represents to query the latest block in the chain.
const QueryLastest = -1

// =============================================================================

// QueryBalance returns the sum of the unspent outputs owned by the public key.
func (s *State) QueryBalance(owner string) ledger.Amount {
	return s.ledger.Balance(owner)
}

// QueryByOwner returns the unspent outputs owned by the public key. It
// allows the state to serve as the ledger view for a wallet.
func (s *State) QueryByOwner(owner string) []ledger.Output {
	return s.ledger.QueryByOwner(owner)
}

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// QueryBlocksByNumber returns the set of blocks based on block numbers.
func (s *State) QueryBlocksByNumber(from int, to int) []database.Block {
	blocks := s.db.Copy()
	if len(blocks) == 0 {
		return nil
	}

	last := len(blocks) - 1
	if from == QueryLastest {
		from = last
		to = from
	}
	if to == QueryLastest || to > last {
		to = last
	}

	if from < 0 || from > to {
		return nil
	}

	return blocks[from : to+1]
}

// QueryBlocksByOwner returns the set of blocks holding a transaction sent or
// received by the public key. If the owner is empty, all blocks are returned.
func (s *State) QueryBlocksByOwner(owner string) []database.Block {
	var out []database.Block

	for _, block := range s.db.Copy() {
		for _, tx := range block.Trans {
			if owner == "" || tx.From == owner || tx.To == owner {
				out = append(out, block)
				break
			}
		}
	}

	return out
}
