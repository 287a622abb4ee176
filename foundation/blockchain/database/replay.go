package database

import (
	"fmt"

	"github.com/liquiduspro/noobchain/foundation/blockchain/ledger"
)

// ReplayLedger rebuilds the set of unspent outputs by walking the blocks in
// order against a scratch ledger. Every transaction must spend outputs that
// exist at that point in the chain, be signed by the owner of those outputs
// and produce exactly as much value as it consumes.
func ReplayLedger(blocks []Block) (*ledger.Ledger, error) {
	l := ledger.New()

	for i, block := range blocks {
		if block.IsGenesis() {
			for _, tx := range block.Trans {
				if tx.ID != GenesisTxID {
					return nil, &IntegrityError{Index: i, Hash: block.Hash, Reason: fmt.Sprintf("transaction %s: genesis block holds a spending transaction", tx.ID)}
				}

				for _, output := range tx.Outputs {
					l.Put(output.ID, output)
				}
			}
			continue
		}

		next := 0
		for _, tx := range block.Trans {
			if next+len(tx.Inputs) > len(block.Spent) {
				return nil, &IntegrityError{Index: i, Hash: block.Hash, Reason: fmt.Sprintf("transaction %s: spent outputs missing", tx.ID)}
			}

			spent := block.Spent[next : next+len(tx.Inputs)]
			next += len(tx.Inputs)

			if reason := replayTx(l, tx, spent); reason != "" {
				return nil, &IntegrityError{Index: i, Hash: block.Hash, Reason: fmt.Sprintf("transaction %s: %s", tx.ID, reason)}
			}
		}

		if next != len(block.Spent) {
			return nil, &IntegrityError{Index: i, Hash: block.Hash, Reason: "block carries spent outputs no transaction claims"}
		}
	}

	return l, nil
}

// replayTx applies a single transaction to the scratch ledger and returns the
// reason it could not be applied.
func replayTx(l *ledger.Ledger, tx Tx, spent []ledger.Output) string {
	if !tx.VerifySignature() {
		return ErrSignatureInvalid.Error()
	}

	if reason := checkPayload(tx, spent); reason != "" {
		return reason
	}

	remove := make([]string, len(spent))
	for k, output := range spent {
		current, err := l.Get(output.ID)
		if err != nil {
			return fmt.Sprintf("%s: %s", ErrInputNotFound, output.ID)
		}

		if current != output {
			return fmt.Sprintf("spent output %s does not match the ledger", output.ID)
		}

		if !output.IsMine(tx.From) {
			return fmt.Sprintf("%s: %s", ErrInputNotOwned, output.ID)
		}

		remove[k] = output.ID
	}

	if err := l.Apply(ledger.Update{Add: tx.Outputs, Remove: remove}); err != nil {
		return err.Error()
	}

	return ""
}
