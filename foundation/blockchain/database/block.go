package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/liquiduspro/noobchain/foundation/blockchain/ledger"
	"github.com/liquiduspro/noobchain/foundation/blockchain/merkle"
	"github.com/liquiduspro/noobchain/foundation/blockchain/signature"
)

// RootHash is the previous hash of the first block in the chain.
const RootHash = "0"

// MaxDifficulty is the largest difficulty a hash can satisfy.
const MaxDifficulty = 64

// cancelCheckInterval is the number of nonces tried between checks for a
// cancelled mining operation.
const cancelCheckInterval = 1 << 14

// =============================================================================

// Block represents a group of transactions batched together. Only the nonce
// and hash change while a block is mined, and only by the G that owns it.
type Block struct {
	PrevBlockHash string          `json:"prev_block_hash"` // Hash of the previous block in the chain.
	TimeStamp     int64           `json:"timestamp"`       // Time the block was created in milliseconds.
	Nonce         uint64          `json:"nonce"`           // Value identified to solve the hash solution.
	MerkleRoot    string          `json:"merkle_root"`     // Merkle tree root hash for the transaction ids.
	Hash          string          `json:"hash"`            // Hash of the fields above.
	Trans         []Tx            `json:"trans"`           // Transactions in this block.
	Spent         []ledger.Output `json:"spent"`           // Outputs consumed by the transactions.
}

// NewBlock constructs an empty block that extends the specified hash.
func NewBlock(prevBlockHash string) *Block {
	b := Block{
		PrevBlockHash: prevBlockHash,
		TimeStamp:     time.Now().UTC().UnixMilli(),
	}
	b.Hash = b.CalculateHash()

	return &b
}

// IsGenesis reports if this is the first block of the chain.
func (b *Block) IsGenesis() bool {
	return b.PrevBlockHash == RootHash
}

// AddTransaction processes the transaction against the ledger and, if it's
// valid, adds it to the block. A rejected transaction leaves the block and
// the ledger unchanged.
func (b *Block) AddTransaction(l *ledger.Ledger, tx Tx, minimum ledger.Amount) error {
	if tx.Value < 0 {
		return ErrNegativeValue
	}

	if b.IsGenesis() {
		return b.AddGenesisTransaction(tx)
	}

	spent, err := tx.Process(l, minimum)
	if err != nil {
		return err
	}

	b.Trans = append(b.Trans, tx)
	b.Spent = append(b.Spent, spent...)

	return nil
}

// AddGenesisTransaction adds the minting transaction to the genesis block.
// It is not processed since there is nothing in the ledger to spend.
func (b *Block) AddGenesisTransaction(tx Tx) error {
	if !b.IsGenesis() {
		return errors.New("only the genesis block can take a genesis transaction")
	}

	if tx.ID != GenesisTxID {
		return fmt.Errorf("genesis transaction must have id %q", GenesisTxID)
	}

	b.Trans = append(b.Trans, tx)
	return nil
}

// TxIDs returns the ids of the transactions in the order they were added.
func (b *Block) TxIDs() []string {
	ids := make([]string, len(b.Trans))
	for i, tx := range b.Trans {
		ids[i] = tx.ID
	}
	return ids
}

// CalculateHash returns the hash of the previous hash, timestamp, nonce and
// merkle root.
func (b *Block) CalculateHash() string {
	return signature.Hash(
		b.PrevBlockHash,
		strconv.FormatInt(b.TimeStamp, 10),
		strconv.FormatUint(b.Nonce, 10),
		b.MerkleRoot,
	)
}

// Mine calculates the merkle root and then searches for a nonce that gives
// the block a hash with difficulty leading zeros. The search can be
// cancelled through the context.
func (b *Block) Mine(ctx context.Context, difficulty uint, ev func(v string, args ...any)) error {
	if difficulty > MaxDifficulty {
		return fmt.Errorf("difficulty %d is larger than %d", difficulty, MaxDifficulty)
	}

	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	b.MerkleRoot = merkle.Root(b.TxIDs())
	b.Nonce = 0

	ev("database: Mine: MINING: started: prevBlk[%s]: trans[%d]", b.PrevBlockHash, len(b.Trans))

	for {
		if b.Nonce%cancelCheckInterval == 0 && ctx.Err() != nil {
			ev("database: Mine: MINING: CANCELLED: attempts[%d]", b.Nonce)
			return ctx.Err()
		}

		hash := b.CalculateHash()
		if isHashSolved(difficulty, hash) {
			b.Hash = hash
			ev("database: Mine: MINING: SOLVED: prevBlk[%s]: newBlk[%s]: attempts[%d]", b.PrevBlockHash, hash, b.Nonce+1)
			return nil
		}

		b.Nonce++
	}
}

// IsSolved reports if the stored hash meets the difficulty.
func (b *Block) IsSolved(difficulty uint) bool {
	return isHashSolved(difficulty, b.Hash)
}

// IsValid checks the block against the block it claims to extend. The hash
// must match the block fields, the merkle root must match the transactions,
// every transaction must carry a valid signature and its outputs and spent
// records must agree with what it signed.
func (b *Block) IsValid(prev *Block) bool {
	return b.validate(prev) == ""
}

// Rebase constructs a new unmined block that extends the specified hash and
// carries the same processed transactions. It's used when another block was
// appended first and this one became stale.
func (b *Block) Rebase(prevBlockHash string) *Block {
	nb := NewBlock(prevBlockHash)

	nb.Trans = make([]Tx, len(b.Trans))
	copy(nb.Trans, b.Trans)

	nb.Spent = make([]ledger.Output, len(b.Spent))
	copy(nb.Spent, b.Spent)

	return nb
}

// =============================================================================

// validate returns the reason the block is not valid or an empty string.
func (b *Block) validate(prev *Block) string {
	if prev != nil && b.PrevBlockHash != prev.Hash {
		return fmt.Sprintf("previous hash doesn't match, got %s, exp %s", b.PrevBlockHash, prev.Hash)
	}

	if hash := b.CalculateHash(); b.Hash != hash {
		return fmt.Sprintf("invalid block hash, got %s, exp %s", b.Hash, hash)
	}

	if root := merkle.Root(b.TxIDs()); b.MerkleRoot != root {
		return fmt.Sprintf("merkle root does not match transactions, got %s, exp %s", b.MerkleRoot, root)
	}

	for _, tx := range b.Trans {
		if !tx.VerifySignature() {
			return fmt.Sprintf("transaction %s: %s", tx.ID, ErrSignatureInvalid)
		}
	}

	// The genesis block mints its outputs and spends nothing.
	if b.IsGenesis() {
		return ""
	}

	next := 0
	for _, tx := range b.Trans {
		if next+len(tx.Inputs) > len(b.Spent) {
			return fmt.Sprintf("transaction %s: spent outputs missing", tx.ID)
		}

		spent := b.Spent[next : next+len(tx.Inputs)]
		next += len(tx.Inputs)

		if reason := checkPayload(tx, spent); reason != "" {
			return fmt.Sprintf("transaction %s: %s", tx.ID, reason)
		}
	}

	if next != len(b.Spent) {
		return "block carries spent outputs no transaction claims"
	}

	return ""
}

// checkPayload makes sure the outputs of a processed transaction are the
// ones its signed fields produce and that the spent outputs recorded for it
// match its inputs and cover its outputs exactly.
func checkPayload(tx Tx, spent []ledger.Output) string {
	if len(tx.Outputs) != 2 {
		return fmt.Sprintf("expected 2 outputs, got %d", len(tx.Outputs))
	}

	if tx.Outputs[0] != ledger.NewOutput(tx.To, tx.Value, tx.ID) {
		return "first output does not pay the recipient"
	}

	change := tx.Outputs[1]
	if change.Value < 0 || change != ledger.NewOutput(tx.From, change.Value, tx.ID) {
		return "second output does not return change to the sender"
	}

	if len(spent) != len(tx.Inputs) {
		return fmt.Sprintf("expected %d spent outputs, got %d", len(tx.Inputs), len(spent))
	}

	for k, output := range spent {
		if tx.Inputs[k].OutputID != output.ID {
			return fmt.Sprintf("input %s does not match spent output %s", tx.Inputs[k].OutputID, output.ID)
		}
	}

	if in, out := InputsValue(spent), tx.OutputsValue(); in != out {
		return fmt.Sprintf("inputs %s do not equal outputs %s", in, out)
	}

	return ""
}

// isHashSolved checks the hash to make sure it complies with
// the POW rules. We need to match a difficulty number of 0's.
func isHashSolved(difficulty uint, hash string) bool {
	if len(hash) != 64 || difficulty > MaxDifficulty {
		return false
	}

	return hash[:difficulty] == strings.Repeat("0", int(difficulty))
}
