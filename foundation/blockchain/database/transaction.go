package database

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/liquiduspro/noobchain/foundation/blockchain/ledger"
	"github.com/liquiduspro/noobchain/foundation/blockchain/signature"
)

// GenesisTxID is the id given to the transaction that mints the initial
// coin supply. It's also the id of the input it claims to spend.
const GenesisTxID = "0"

// =============================================================================

// TxInput references an unspent output by id. The output itself is looked up
// in the ledger when the transaction is processed.
type TxInput struct {
	OutputID string `json:"output_id"`
}

// Tx is the transfer of value between two parties. The outputs and the id are
// empty until the transaction is processed.
type Tx struct {
	ID        string          `json:"id"`
	From      string          `json:"from"`      // Public key of the sender.
	To        string          `json:"to"`        // Public key of the recipient.
	Value     ledger.Amount   `json:"value"`     // Amount being sent to the recipient.
	Inputs    []TxInput       `json:"inputs"`    // Outputs owned by the sender being spent.
	Outputs   []ledger.Output `json:"outputs"`   // Recipient output followed by the sender's change.
	Signature hexutil.Bytes   `json:"signature"` // Sender's signature of from, to and value.
}

// NewTx constructs a new unsigned transaction.
func NewTx(from string, to string, value ledger.Amount, inputs []TxInput) (Tx, error) {
	if !signature.IsPublicKey(from) {
		return Tx{}, errors.New("from account is not properly formatted")
	}

	if !signature.IsPublicKey(to) {
		return Tx{}, errors.New("to account is not properly formatted")
	}

	tx := Tx{
		From:   from,
		To:     to,
		Value:  value,
		Inputs: inputs,
	}

	return tx, nil
}

// Sign uses the specified private key to sign the transaction. The key must
// belong to the sender.
func (tx Tx) Sign(privateKey *ecdsa.PrivateKey) (Tx, error) {
	if signature.PublicKeyString(privateKey.PublicKey) != tx.From {
		return Tx{}, errors.New("private key does not belong to the sender")
	}

	sig, err := signature.Sign(privateKey, tx.signingData())
	if err != nil {
		return Tx{}, err
	}

	tx.Signature = sig
	return tx, nil
}

// VerifySignature reports if the signature was produced by the sender for
// this from, to and value.
func (tx Tx) VerifySignature() bool {
	return signature.Verify(tx.From, tx.signingData(), tx.Signature)
}

// Process validates the transaction against the ledger and, when valid,
// moves the value from the inputs into two new outputs. The ledger is only
// changed when every check passes and then in a single update. It returns
// the outputs that were consumed.
func (tx *Tx) Process(l *ledger.Ledger, minimum ledger.Amount) ([]ledger.Output, error) {
	if tx.ID != "" {
		return nil, ErrAlreadyProcessed
	}

	if tx.Value < 0 {
		return nil, ErrNegativeValue
	}

	if !tx.VerifySignature() {
		return nil, ErrSignatureInvalid
	}

	// Resolve the inputs into the outputs being spent.
	spent := make([]ledger.Output, 0, len(tx.Inputs))
	seen := make(map[string]struct{}, len(tx.Inputs))
	var total ledger.Amount
	for _, input := range tx.Inputs {
		if _, exists := seen[input.OutputID]; exists {
			return nil, fmt.Errorf("%w: %s used twice", ErrInputNotFound, input.OutputID)
		}
		seen[input.OutputID] = struct{}{}

		output, err := l.Get(input.OutputID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, input.OutputID)
		}

		if !output.IsMine(tx.From) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotOwned, input.OutputID)
		}

		spent = append(spent, output)
		total += output.Value
	}

	if total < minimum {
		return nil, fmt.Errorf("%w: inputs %s, minimum %s", ErrBelowMinimum, total, minimum)
	}

	if total < tx.Value {
		return nil, fmt.Errorf("%w: inputs %s, value %s", ErrInsufficientFunds, total, tx.Value)
	}

	// Generate the outputs, the recipient first then the sender's change.
	leftOver := total - tx.Value
	id := signature.Hash(tx.From, tx.To, tx.Value.String(), strconv.FormatUint(l.NextSequence(), 10))
	outputs := []ledger.Output{
		ledger.NewOutput(tx.To, tx.Value, id),
		ledger.NewOutput(tx.From, leftOver, id),
	}

	remove := make([]string, len(spent))
	for i, output := range spent {
		remove[i] = output.ID
	}

	// Another transaction may have spent one of the inputs since they were
	// resolved. Apply rechecks that under the write lock.
	if err := l.Apply(ledger.Update{Add: outputs, Remove: remove}); err != nil {
		switch {
		case errors.Is(err, ledger.ErrNotFound):
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, err)
		case errors.Is(err, ledger.ErrDuplicate):
			return nil, fmt.Errorf("%w: %s", ErrOutputCollision, err)
		}
		return nil, err
	}

	tx.ID = id
	tx.Outputs = outputs

	return spent, nil
}

// InputsValue returns the sum of the specified outputs.
func InputsValue(outputs []ledger.Output) ledger.Amount {
	var total ledger.Amount
	for _, output := range outputs {
		total += output.Value
	}
	return total
}

// OutputsValue returns the sum of the transaction outputs.
func (tx Tx) OutputsValue() ledger.Amount {
	return InputsValue(tx.Outputs)
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	id := tx.ID
	if id == "" {
		id = "unprocessed"
	}

	return fmt.Sprintf("%s:%s->%s:%s", id, short(tx.From), short(tx.To), tx.Value)
}

// =============================================================================

// NewGenesisTx constructs the transaction that mints the initial supply for
// the recipient. It's signed by the coinbase key and isn't processed against
// the ledger, the caller seeds the ledger with its single output.
func NewGenesisTx(coinbase *ecdsa.PrivateKey, to string, supply ledger.Amount) (Tx, error) {
	from := signature.PublicKeyString(coinbase.PublicKey)

	tx, err := NewTx(from, to, supply, []TxInput{{OutputID: GenesisTxID}})
	if err != nil {
		return Tx{}, err
	}

	tx, err = tx.Sign(coinbase)
	if err != nil {
		return Tx{}, err
	}

	tx.ID = GenesisTxID
	tx.Outputs = []ledger.Output{ledger.NewOutput(to, supply, GenesisTxID)}

	return tx, nil
}

// =============================================================================

// PendingTx represents a signed transaction waiting in the mempool. Seq is
// the order the transaction was received in.
type PendingTx struct {
	Tx
	Seq       uint64 `json:"seq"`
	TimeStamp int64  `json:"timestamp"`
}

// UniqueKey returns the key that identifies the pending transaction.
func (ptx PendingTx) UniqueKey() string {
	return fmt.Sprintf("%s:%d", ptx.From, ptx.Seq)
}

// =============================================================================

// signingData returns the data covered by the signature.
func (tx Tx) signingData() string {
	return tx.From + tx.To + tx.Value.String()
}

// short returns an abbreviated form of a public key for logging.
func short(key string) string {
	if len(key) <= 12 {
		return key
	}
	return key[:12]
}
