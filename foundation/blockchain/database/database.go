// Package database handles the in memory chain of blocks along with the
// transactions and blocks that make it up.
package database

import (
	"fmt"
	"sync"
)

// Database manages the chain of blocks. The blocks are owned by the database,
// callers only ever receive copies.
type Database struct {
	mu         sync.RWMutex
	difficulty uint
	blocks     []Block
}

// New constructs an empty chain that requires blocks to be solved at the
// specified difficulty.
func New(difficulty uint) (*Database, error) {
	if difficulty > MaxDifficulty {
		return nil, fmt.Errorf("difficulty %d is larger than %d", difficulty, MaxDifficulty)
	}

	db := Database{
		difficulty: difficulty,
	}

	return &db, nil
}

// Difficulty returns the number of leading zeros a block hash must have.
func (db *Database) Difficulty() uint {
	return db.difficulty
}

// TipHash returns the hash of the latest block or the root hash when the
// chain is empty.
func (db *Database) TipHash() string {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.tipHash()
}

// TryAppend adds the block to the end of the chain only if it extends the
// current tip. The check and the append happen under the same write lock so
// no other append can slip in between.
func (db *Database) TryAppend(block *Block) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if tip := db.tipHash(); block.PrevBlockHash != tip {
		return fmt.Errorf("%w: got %s, tip %s", ErrStaleTip, block.PrevBlockHash, tip)
	}

	db.blocks = append(db.blocks, *block)

	return nil
}

// Validate walks the chain and returns an IntegrityError for the first block
// that has a bad hash, a broken link, an unsolved hash or a merkle root that
// doesn't match its transactions. The chain is not changed.
func (db *Database) Validate() error {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for i := range db.blocks {
		block := &db.blocks[i]

		var prev *Block
		switch i {
		case 0:
			if !block.IsGenesis() {
				return &IntegrityError{Index: i, Hash: block.Hash, Reason: "first block does not extend the root hash"}
			}
		default:
			prev = &db.blocks[i-1]
		}

		if reason := block.validate(prev); reason != "" {
			return &IntegrityError{Index: i, Hash: block.Hash, Reason: reason}
		}

		if !block.IsSolved(db.difficulty) {
			return &IntegrityError{Index: i, Hash: block.Hash, Reason: fmt.Sprintf("hash not solved for difficulty %d", db.difficulty)}
		}
	}

	return nil
}

// Copy returns a copy of the blocks in chain order.
func (db *Database) Copy() []Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	blocks := make([]Block, len(db.blocks))
	copy(blocks, db.blocks)
	return blocks
}

// Len returns the number of blocks in the chain.
func (db *Database) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return len(db.blocks)
}

// Block returns the block at the specified index.
func (db *Database) Block(index int) (Block, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if index < 0 || index >= len(db.blocks) {
		return Block{}, fmt.Errorf("invalid block index %d", index)
	}

	return db.blocks[index], nil
}

// LatestBlock returns the block at the tip of the chain.
func (db *Database) LatestBlock() (Block, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if len(db.blocks) == 0 {
		return Block{}, false
	}

	return db.blocks[len(db.blocks)-1], true
}

// =============================================================================

// tipHash must be called while holding the lock.
func (db *Database) tipHash() string {
	if len(db.blocks) == 0 {
		return RootHash
	}

	return db.blocks[len(db.blocks)-1].Hash
}
