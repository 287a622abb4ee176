package signature_test

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/liquiduspro/noobchain/foundation/blockchain/signature"
)

const (
	pkHexKey  = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	pkHexKey2 = "9f332e3700d8fc2446eaf6d15034cf96e0c2745e40353deef032a5dbf1dfed93"
)

// =============================================================================

func Test_Signing(t *testing.T) {
	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}
	pub := signature.PublicKeyString(pk.PublicKey)

	sig, err := signature.Sign(pk, "Bill sends 40 to Ale")
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	if len(sig) != crypto.SignatureLength {
		t.Logf("got: %d", len(sig))
		t.Logf("exp: %d", crypto.SignatureLength)
		t.Fatalf("Should get back a full length signature.")
	}

	if !signature.Verify(pub, "Bill sends 40 to Ale", sig) {
		t.Fatalf("Should be able to verify the signature.")
	}

	if signature.Verify(pub, "Bill sends 400 to Ale", sig) {
		t.Fatalf("Should not verify the signature against different data.")
	}

	pk2, err := crypto.HexToECDSA(pkHexKey2)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	if signature.Verify(signature.PublicKeyString(pk2.PublicKey), "Bill sends 40 to Ale", sig) {
		t.Fatalf("Should not verify the signature against a different key.")
	}
}

func Test_VerifyMalformed(t *testing.T) {
	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}
	pub := signature.PublicKeyString(pk.PublicKey)

	sig, err := signature.Sign(pk, "data")
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	tt := []struct {
		name string
		pub  string
		sig  []byte
	}{
		{"nil signature", pub, nil},
		{"short signature", pub, sig[:10]},
		{"garbage signature", pub, make([]byte, 65)},
		{"bad key encoding", "not-a-key", sig},
		{"empty key", "", sig},
		{"short key", "0x0411", sig},
	}

	for _, tst := range tt {
		if signature.Verify(tst.pub, "data", tst.sig) {
			t.Errorf("%s: Should not verify.", tst.name)
		}
	}
}

func Test_Hash(t *testing.T) {
	const exp = "a591a6d40bf420404a011733cfb7b190d62c65bf0bcda32b57b277d9ad9f146e"

	got := signature.Hash("Hello", " ", "World")
	if got != signature.Hash("Hello World") {
		t.Fatalf("Should get the same hash for the same concatenation.")
	}

	if got != exp {
		t.Logf("got: %s", got)
		t.Logf("exp: %s", exp)
		t.Fatalf("Should get back the right hash.")
	}

	if got != strings.ToLower(got) || len(got) != 64 {
		t.Fatalf("Should get back a 64 character lowercase hash: %s", got)
	}
}

func Test_PublicKey(t *testing.T) {
	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	pub := signature.PublicKeyString(pk.PublicKey)
	if !signature.IsPublicKey(pub) {
		t.Fatalf("Should recognize an encoded public key: %s", pub)
	}

	if signature.IsPublicKey(pub[2:]) {
		t.Fatalf("Should require the 0x prefix.")
	}

	if signature.IsPublicKey("0x1234") {
		t.Fatalf("Should reject a short key.")
	}
}

func Test_SelfTest(t *testing.T) {
	if err := signature.SelfTest(); err != nil {
		t.Fatalf("Should have a working crypto backend: %s", err)
	}
}
