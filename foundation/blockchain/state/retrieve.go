package state

import (
	"github.com/liquiduspro/noobchain/foundation/blockchain/database"
	"github.com/liquiduspro/noobchain/foundation/blockchain/genesis"
	"github.com/liquiduspro/noobchain/foundation/blockchain/ledger"
)

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveBeneficiary returns the public key the initial supply was minted to.
func (s *State) RetrieveBeneficiary() string {
	return s.beneficiary
}

// RetrieveCoinbase returns the public key that signed the genesis transaction.
func (s *State) RetrieveCoinbase() string {
	return s.coinbase
}

// RetrieveLatestBlock returns a copy the current latest block.
func (s *State) RetrieveLatestBlock() (database.Block, bool) {
	return s.db.LatestBlock()
}

// RetrieveBlocks returns a copy of the chain in order.
func (s *State) RetrieveBlocks() []database.Block {
	return s.db.Copy()
}

// RetrieveMempool returns a copy of the mempool in arrival order.
func (s *State) RetrieveMempool() []database.PendingTx {
	return s.mempool.Copy()
}

// RetrieveLedger returns a copy of the unspent outputs.
func (s *State) RetrieveLedger() map[string]ledger.Output {
	return s.ledger.Copy()
}

// TipHash returns the hash of the latest block in the chain.
func (s *State) TipHash() string {
	return s.db.TipHash()
}

// Difficulty returns the difficulty blocks are mined at.
func (s *State) Difficulty() uint {
	return s.db.Difficulty()
}
