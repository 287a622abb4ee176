// Package wallet provides support for holding keys and building signed
// transactions from the outputs a key owns.
package wallet

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/liquiduspro/noobchain/foundation/blockchain/database"
	"github.com/liquiduspro/noobchain/foundation/blockchain/ledger"
	"github.com/liquiduspro/noobchain/foundation/blockchain/signature"
)

// Querier represents the view of the ledger a wallet needs.
type Querier interface {
	QueryByOwner(owner string) []ledger.Output
}

// Wallet holds a key pair.
type Wallet struct {
	PrivateKey *ecdsa.PrivateKey
	PublicKey  string
}

// New constructs a wallet with a freshly generated key.
func New() (Wallet, error) {
	pk, err := crypto.GenerateKey()
	if err != nil {
		return Wallet{}, fmt.Errorf("%w: %s", signature.ErrCryptoUnavailable, err)
	}

	return FromPrivateKey(pk), nil
}

// FromPrivateKey constructs a wallet for an existing key.
func FromPrivateKey(pk *ecdsa.PrivateKey) Wallet {
	return Wallet{
		PrivateKey: pk,
		PublicKey:  signature.PublicKeyString(pk.PublicKey),
	}
}

// Load reads a hex encoded private key from the specified file.
func Load(path string) (Wallet, error) {
	pk, err := crypto.LoadECDSA(path)
	if err != nil {
		return Wallet{}, fmt.Errorf("unable to load private key: %w", err)
	}

	return FromPrivateKey(pk), nil
}

// Save writes the private key hex encoded to the specified file.
func (w Wallet) Save(path string) error {
	if err := crypto.SaveECDSA(path, w.PrivateKey); err != nil {
		return fmt.Errorf("unable to save private key: %w", err)
	}

	return nil
}

// Balance returns the sum of the outputs owned by the wallet.
func (w Wallet) Balance(q Querier) ledger.Amount {
	var total ledger.Amount
	for _, output := range q.QueryByOwner(w.PublicKey) {
		total += output.Value
	}
	return total
}

// SendFunds builds and signs a transaction moving value to the recipient.
// Owned outputs are used as inputs until the value is covered. The ledger is
// not changed, that happens when the transaction is processed into a block.
func (w Wallet) SendFunds(q Querier, to string, value ledger.Amount) (database.Tx, error) {
	if value < 0 {
		return database.Tx{}, database.ErrNegativeValue
	}

	if !signature.IsPublicKey(to) {
		return database.Tx{}, errors.New("recipient is not a public key")
	}

	var total ledger.Amount
	var inputs []database.TxInput
	for _, output := range q.QueryByOwner(w.PublicKey) {
		inputs = append(inputs, database.TxInput{OutputID: output.ID})
		total += output.Value
		if total >= value {
			break
		}
	}

	if total < value || len(inputs) == 0 {
		return database.Tx{}, fmt.Errorf("%w: balance %s, value %s", database.ErrInsufficientFunds, total, value)
	}

	tx, err := database.NewTx(w.PublicKey, to, value, inputs)
	if err != nil {
		return database.Tx{}, err
	}

	return tx.Sign(w.PrivateKey)
}
