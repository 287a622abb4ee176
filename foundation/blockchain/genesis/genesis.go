// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/liquiduspro/noobchain/foundation/blockchain/ledger"
)

// Genesis represents the genesis file.
type Genesis struct {
	Date               time.Time     `json:"date"`
	ChainID            uint16        `json:"chain_id"`            // The chain id represents an unique id for this running instance.
	TransPerBlock      uint16        `json:"trans_per_block"`     // The maximum number of transactions that can be in a block.
	Difficulty         uint16        `json:"difficulty"`          // How difficult it needs to be to solve the work problem.
	MinimumTransaction ledger.Amount `json:"minimum_transaction"` // Smallest total input a transaction can spend.
	InitialSupply      ledger.Amount `json:"initial_supply"`      // Coins minted to the beneficiary by the genesis block.
}

// Default returns the genesis settings used when no file is provided.
func Default() Genesis {
	return Genesis{
		Date:               time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		ChainID:            1,
		TransPerBlock:      20,
		Difficulty:         5,
		MinimumTransaction: ledger.Coin / 10,
		InitialSupply:      100 * ledger.Coin,
	}
}

// =============================================================================

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	err = json.Unmarshal(content, &genesis)
	if err != nil {
		return Genesis{}, err
	}

	if err := genesis.Validate(); err != nil {
		return Genesis{}, fmt.Errorf("genesis %s: %w", path, err)
	}

	return genesis, nil
}

// Validate checks the settings make a usable chain.
func (g Genesis) Validate() error {
	switch {
	case g.TransPerBlock == 0:
		return fmt.Errorf("trans_per_block must be greater than zero")
	case g.Difficulty > 64:
		return fmt.Errorf("difficulty %d is larger than 64", g.Difficulty)
	case g.MinimumTransaction < 0:
		return fmt.Errorf("minimum_transaction %s is negative", g.MinimumTransaction)
	case g.InitialSupply <= 0:
		return fmt.Errorf("initial_supply must be greater than zero")
	}

	return nil
}
