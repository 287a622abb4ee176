// Package nameservice reads the zblock/accounts folder and creates a name
// service lookup for the public keys of the wallets stored there.
package nameservice

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/liquiduspro/noobchain/foundation/blockchain/signature"
)

// NameService maintains a map of public keys for name lookup.
type NameService struct {
	keys map[string]string
}

// New constructs a name service with the keys from the specified folder.
// Every .ecdsa file is a wallet named after the file.
func New(root string) (*NameService, error) {
	ns := NameService{
		keys: make(map[string]string),
	}

	fn := func(fileName string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if path.Ext(fileName) != ".ecdsa" {
			return nil
		}

		privateKey, err := crypto.LoadECDSA(fileName)
		if err != nil {
			return err
		}

		publicKey := signature.PublicKeyString(privateKey.PublicKey)
		ns.keys[publicKey] = strings.TrimSuffix(path.Base(fileName), ".ecdsa")

		return nil
	}

	if err := filepath.Walk(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the specified public key. Unknown keys are
// returned as is.
func (ns *NameService) Lookup(publicKey string) string {
	name, exists := ns.keys[publicKey]
	if !exists {
		return publicKey
	}
	return name
}

// Copy returns a copy of the map of public keys and names.
func (ns *NameService) Copy() map[string]string {
	cpy := make(map[string]string, len(ns.keys))
	for publicKey, name := range ns.keys {
		cpy[publicKey] = name
	}
	return cpy
}
