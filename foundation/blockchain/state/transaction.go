package state

import (
	"fmt"

	"github.com/liquiduspro/noobchain/foundation/blockchain/database"
	"github.com/liquiduspro/noobchain/foundation/blockchain/ledger"
)

// SubmitTransaction accepts a signed transaction from a wallet for inclusion
// in a future block and signals the worker to start mining.
func (s *State) SubmitTransaction(tx database.Tx) (database.PendingTx, error) {
	if err := s.validateTransaction(tx); err != nil {
		return database.PendingTx{}, err
	}

	ptx, err := s.mempool.Upsert(tx)
	if err != nil {
		return database.PendingTx{}, err
	}

	s.evHandler("viewer: tx: submitted[%s] pending[%d]", ptx, s.mempool.Count())

	if s.Worker != nil {
		s.Worker.SignalStartMining()
	}

	return ptx, nil
}

// =============================================================================

// validateTransaction checks the transaction against the current ledger so
// obviously bad transactions are rejected before they reach the mempool. The
// checks are repeated when the transaction is processed into a block.
func (s *State) validateTransaction(tx database.Tx) error {
	if tx.Value < 0 {
		return database.ErrNegativeValue
	}

	if !tx.VerifySignature() {
		return database.ErrSignatureInvalid
	}

	var total ledger.Amount
	for _, input := range tx.Inputs {
		output, err := s.ledger.Get(input.OutputID)
		if err != nil {
			return fmt.Errorf("%w: %s", database.ErrInputNotFound, input.OutputID)
		}

		if !output.IsMine(tx.From) {
			return fmt.Errorf("%w: %s", database.ErrInputNotOwned, input.OutputID)
		}

		total += output.Value
	}

	if total < s.genesis.MinimumTransaction {
		return fmt.Errorf("%w: inputs %s, minimum %s", database.ErrBelowMinimum, total, s.genesis.MinimumTransaction)
	}

	if total < tx.Value {
		return fmt.Errorf("%w: inputs %s, value %s", database.ErrInsufficientFunds, total, tx.Value)
	}

	return nil
}
