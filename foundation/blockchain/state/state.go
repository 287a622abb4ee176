// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/liquiduspro/noobchain/foundation/blockchain/database"
	"github.com/liquiduspro/noobchain/foundation/blockchain/genesis"
	"github.com/liquiduspro/noobchain/foundation/blockchain/ledger"
	"github.com/liquiduspro/noobchain/foundation/blockchain/mempool"
	"github.com/liquiduspro/noobchain/foundation/blockchain/signature"
)

// EventHandler defines a function that is called when events
// occur in the processing of persisting blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining.
type Worker interface {
	Shutdown()
	SignalStartMining()
}

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	Genesis        genesis.Genesis
	Coinbase       *ecdsa.PrivateKey
	Beneficiary    string
	SelectStrategy string
	EvHandler      EventHandler
}

// State manages the blockchain database.
type State struct {
	beneficiary string
	coinbase    string
	evHandler   EventHandler

	// Outputs created by blocks that are assembled but not yet appended.
	// They can't be spent until their block is on the chain.
	mu       sync.Mutex
	inflight map[string]struct{}

	genesis genesis.Genesis
	mempool *mempool.Mempool
	ledger  *ledger.Ledger
	db      *database.Database

	Worker Worker
}

// New constructs a new blockchain for data management. The genesis block is
// built and mined here, minting the initial supply to the beneficiary.
func New(ctx context.Context, cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if err := cfg.Genesis.Validate(); err != nil {
		return nil, fmt.Errorf("genesis: %w", err)
	}

	if !signature.IsPublicKey(cfg.Beneficiary) {
		return nil, errors.New("beneficiary is not a public key")
	}

	// The coinbase only ever signs the genesis transaction so a throwaway
	// key is fine when one isn't provided.
	coinbase := cfg.Coinbase
	if coinbase == nil {
		var err error
		if coinbase, err = crypto.GenerateKey(); err != nil {
			return nil, fmt.Errorf("%w: %s", signature.ErrCryptoUnavailable, err)
		}
	}

	db, err := database.New(uint(cfg.Genesis.Difficulty))
	if err != nil {
		return nil, err
	}

	// Construct a mempool with the specified select strategy.
	mempool, err := mempool.NewWithStrategy(cfg.SelectStrategy)
	if err != nil {
		return nil, err
	}

	state := State{
		beneficiary: cfg.Beneficiary,
		coinbase:    signature.PublicKeyString(coinbase.PublicKey),
		evHandler:   ev,
		inflight:    make(map[string]struct{}),

		genesis: cfg.Genesis,
		mempool: mempool,
		ledger:  ledger.New(),
		db:      db,
	}

	if err := state.mineGenesis(ctx, coinbase); err != nil {
		return nil, err
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all blockchain writing activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}

// =============================================================================

// mineGenesis builds the first block of the chain. The ledger is seeded with
// the genesis output directly since there is nothing to spend yet.
func (s *State) mineGenesis(ctx context.Context, coinbase *ecdsa.PrivateKey) error {
	s.evHandler("state: mineGenesis: MINING: supply[%s] beneficiary[%s]", s.genesis.InitialSupply, s.beneficiary)

	tx, err := database.NewGenesisTx(coinbase, s.beneficiary, s.genesis.InitialSupply)
	if err != nil {
		return fmt.Errorf("genesis transaction: %w", err)
	}

	block := database.NewBlock(database.RootHash)
	if err := block.AddGenesisTransaction(tx); err != nil {
		return err
	}

	if err := block.Mine(ctx, s.db.Difficulty(), s.evHandler); err != nil {
		return fmt.Errorf("genesis block: %w", err)
	}

	if err := s.db.TryAppend(block); err != nil {
		return fmt.Errorf("genesis block: %w", err)
	}

	for _, output := range tx.Outputs {
		s.ledger.Put(output.ID, output)
	}

	s.evHandler("viewer: block: index[0] hash[%s] trans[%d]", block.Hash, len(block.Trans))

	return nil
}
