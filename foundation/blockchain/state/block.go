package state

import (
	"errors"
	"fmt"

	"github.com/liquiduspro/noobchain/foundation/blockchain/database"
	"github.com/liquiduspro/noobchain/foundation/blockchain/ledger"
)

// AssembleBlock constructs a new block that extends the specified hash and
// fills it with the next set of transactions from the mempool. Transactions
// that fail processing are dropped and logged. Transactions spending outputs
// of a block that is still being mined go back to the mempool. A block with
// no transactions is still returned.
func (s *State) AssembleBlock(prevBlockHash string) *database.Block {
	s.mu.Lock()
	defer s.mu.Unlock()

	block := database.NewBlock(prevBlockHash)

	txs := s.mempool.Take(int(s.genesis.TransPerBlock))

	var deferred int
	for _, tx := range txs {
		if s.spendsInflight(tx.Tx) {
			s.mempool.Requeue(tx)
			deferred++
			continue
		}

		if err := block.AddTransaction(s.ledger, tx.Tx, s.genesis.MinimumTransaction); err != nil {
			s.evHandler("state: AssembleBlock: tx[%s] dropped: %s", tx, err)
			continue
		}
	}

	for _, tx := range block.Trans {
		for _, output := range tx.Outputs {
			s.inflight[output.ID] = struct{}{}
		}
	}

	s.evHandler("state: AssembleBlock: prevBlk[%s]: picked[%d]: added[%d]: deferred[%d]", prevBlockHash, len(txs), len(block.Trans), deferred)

	return block
}

// AppendBlock adds a mined block to the end of the chain. The block must
// extend the current tip, otherwise database.ErrStaleTip is returned and the
// caller is expected to rebase the block and mine it again.
func (s *State) AppendBlock(block *database.Block) error {
	if !block.IsSolved(s.db.Difficulty()) {
		return fmt.Errorf("block %s is not solved for difficulty %d", block.Hash, s.db.Difficulty())
	}

	if err := s.db.TryAppend(block); err != nil {
		return err
	}

	s.release(block)

	s.evHandler("viewer: block: index[%d] hash[%s] trans[%d] nonce[%d]", s.db.Len()-1, block.Hash, len(block.Trans), block.Nonce)

	return nil
}

// AbandonBlock gives the outputs spent by a block that will never be
// appended back to the ledger and removes the outputs it created. If any of
// the created outputs were already spent by another block the ledger is left
// as is and an error is returned.
func (s *State) AbandonBlock(block *database.Block) error {
	if len(block.Trans) == 0 {
		return nil
	}

	defer s.release(block)

	// Outputs created and spent inside the same block never reached the
	// ledger as unspent, so they cancel out.
	spent := make(map[string]struct{}, len(block.Spent))
	for _, output := range block.Spent {
		spent[output.ID] = struct{}{}
	}

	created := make(map[string]struct{})
	var update ledger.Update
	for _, tx := range block.Trans {
		for _, output := range tx.Outputs {
			created[output.ID] = struct{}{}
			if _, exists := spent[output.ID]; !exists {
				update.Remove = append(update.Remove, output.ID)
			}
		}
	}

	for _, output := range block.Spent {
		if _, exists := created[output.ID]; !exists {
			update.Add = append(update.Add, output)
		}
	}

	err := s.ledger.Apply(update)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			err = fmt.Errorf("outputs of the abandoned block were already spent: %w", err)
		}
		s.evHandler("state: AbandonBlock: prevBlk[%s]: trans[%d]: ERROR: %s", block.PrevBlockHash, len(block.Trans), err)
		return err
	}

	s.evHandler("state: AbandonBlock: prevBlk[%s]: trans[%d]: restored", block.PrevBlockHash, len(block.Trans))

	return nil
}

// =============================================================================

// spendsInflight reports if the transaction spends an output created by a
// block that isn't on the chain yet. Must be called while holding the lock.
func (s *State) spendsInflight(tx database.Tx) bool {
	for _, input := range tx.Inputs {
		if _, exists := s.inflight[input.OutputID]; exists {
			return true
		}
	}
	return false
}

// release makes the outputs created by the block spendable by other blocks.
func (s *State) release(block *database.Block) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tx := range block.Trans {
		for _, output := range tx.Outputs {
			delete(s.inflight, output.ID)
		}
	}
}
