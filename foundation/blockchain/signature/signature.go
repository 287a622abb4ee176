// Package signature provides helper functions for handling the blockchain
// hashing and signature needs.
package signature

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrCryptoUnavailable is returned when the hashing or signing backend can't
// produce or verify a signature. A node can't run without it.
var ErrCryptoUnavailable = errors.New("cryptographic backend unavailable")

// selfTestData is signed and verified by SelfTest.
const selfTestData = "noobchain self test"

// =============================================================================

// Hash returns the lowercase hex encoded sha256 of the concatenated parts.
// The result is always 64 characters long.
func Hash(parts ...string) string {
	h := sha256.New()
	for _, part := range parts {
		h.Write([]byte(part))
	}

	return hex.EncodeToString(h.Sum(nil))
}

// Sign uses the specified private key to sign the data. The data is hashed
// with sha256 before signing and the 65 byte [R|S|V] signature is returned.
func Sign(privateKey *ecdsa.PrivateKey, data string) ([]byte, error) {
	if privateKey == nil {
		return nil, errors.New("private key not provided")
	}

	digest := sha256.Sum256([]byte(data))

	sig, err := crypto.Sign(digest[:], privateKey)
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}

	return sig, nil
}

// Verify checks the signature was produced for the data by the private key
// that belongs to the specified public key. Malformed keys or signatures
// simply don't verify.
func Verify(publicKey string, data string, sig []byte) bool {
	if len(sig) < crypto.RecoveryIDOffset {
		return false
	}

	pub, err := hexutil.Decode(publicKey)
	if err != nil {
		return false
	}

	digest := sha256.Sum256([]byte(data))

	return crypto.VerifySignature(pub, digest[:], sig[:crypto.RecoveryIDOffset])
}

// PublicKeyString returns the hex encoding of the uncompressed public key.
// This is how accounts are identified on the chain.
func PublicKeyString(publicKey ecdsa.PublicKey) string {
	return hexutil.Encode(crypto.FromECDSAPub(&publicKey))
}

// IsPublicKey reports if the string is a properly encoded public key.
func IsPublicKey(publicKey string) bool {
	if !strings.HasPrefix(publicKey, "0x") {
		return false
	}

	pub, err := hexutil.Decode(publicKey)
	if err != nil {
		return false
	}

	_, err = crypto.UnmarshalPubkey(pub)
	return err == nil
}

// SelfTest generates a throw away key and performs a full sign and verify
// round trip. Any failure means the backend is not usable.
func SelfTest() error {
	if len(Hash(selfTestData)) != 64 {
		return fmt.Errorf("%w: sha256 digest length", ErrCryptoUnavailable)
	}

	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return fmt.Errorf("%w: %s", ErrCryptoUnavailable, err)
	}

	sig, err := Sign(privateKey, selfTestData)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrCryptoUnavailable, err)
	}

	if !Verify(PublicKeyString(privateKey.PublicKey), selfTestData, sig) {
		return fmt.Errorf("%w: signature round trip failed", ErrCryptoUnavailable)
	}

	return nil
}
