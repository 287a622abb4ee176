package public

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/liquiduspro/noobchain/business/sys/validate"
	"github.com/liquiduspro/noobchain/foundation/blockchain/database"
	"github.com/liquiduspro/noobchain/foundation/blockchain/ledger"
	"github.com/liquiduspro/noobchain/foundation/blockchain/worker"
)

type input struct {
	OutputID string `json:"output_id" validate:"required,hexadecimal"`
}

// submitTx is the signed transaction a wallet sends to the node.
type submitTx struct {
	From      string  `json:"from" validate:"required,pubkey"`
	To        string  `json:"to" validate:"required,pubkey"`
	Value     string  `json:"value" validate:"required,amount"`
	Inputs    []input `json:"inputs" validate:"required,min=1,dive"`
	Signature string  `json:"signature" validate:"required,hexadecimal"`
}

// Validate checks the data in the model is considered clean.
func (stx submitTx) Validate() error {
	return validate.Check(stx)
}

// toTx converts the payload into an unprocessed transaction.
func (stx submitTx) toTx() (database.Tx, error) {
	value, err := ledger.ParseAmount(stx.Value)
	if err != nil {
		return database.Tx{}, err
	}

	sig, err := hexutil.Decode(stx.Signature)
	if err != nil {
		return database.Tx{}, fmt.Errorf("signature: %w", err)
	}

	inputs := make([]database.TxInput, len(stx.Inputs))
	for i, in := range stx.Inputs {
		inputs[i] = database.TxInput{OutputID: in.OutputID}
	}

	tx, err := database.NewTx(stx.From, stx.To, value, inputs)
	if err != nil {
		return database.Tx{}, err
	}
	tx.Signature = sig

	return tx, nil
}

// =============================================================================

type tx struct {
	ID        string          `json:"id,omitempty"`
	Seq       uint64          `json:"seq,omitempty"`
	From      string          `json:"from"`
	FromName  string          `json:"from_name"`
	To        string          `json:"to"`
	ToName    string          `json:"to_name"`
	Value     ledger.Amount   `json:"value"`
	Inputs    []string        `json:"inputs"`
	Outputs   []ledger.Output `json:"outputs,omitempty"`
	TimeStamp int64           `json:"timestamp,omitempty"`
	Sig       string          `json:"sig"`
}

type block struct {
	Number        int    `json:"number"`
	PrevBlockHash string `json:"prev_block_hash"`
	Hash          string `json:"hash"`
	TimeStamp     int64  `json:"timestamp"`
	Nonce         uint64 `json:"nonce"`
	MerkleRoot    string `json:"merkle_root"`
	Transactions  []tx   `json:"txs"`
}

type balance struct {
	Owner   string        `json:"owner"`
	Name    string        `json:"name"`
	Balance ledger.Amount `json:"balance"`
}

type balances struct {
	LastestBlock string    `json:"lastest_block"`
	Uncommitted  int       `json:"uncommitted"`
	Balances     []balance `json:"balances"`
}

type outputs struct {
	Owner   string          `json:"owner"`
	Name    string          `json:"name"`
	Outputs []ledger.Output `json:"outputs"`
}

type validation struct {
	Blocks int    `json:"blocks"`
	Chain  string `json:"chain"`
	Ledger string `json:"ledger"`
}

type miningStats struct {
	worker.Stats
	Workers    int    `json:"workers"`
	Difficulty uint   `json:"difficulty"`
	Height     int    `json:"height"`
	TipHash    string `json:"tip_hash"`
	Pending    int    `json:"pending"`
}
