package signer

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

var testSeed = bytes.Repeat([]byte{0x11}, 32)

func TestEd25519SignatureVerifiesOverIntentDigest(t *testing.T) {
	keypair, err := NewEd25519(testSeed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	transaction := []byte("transaction-bytes")

	serialized, err := keypair.SignTransaction(transaction)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded, err := base64.StdEncoding.DecodeString(serialized)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(decoded) != 1+64+32 {
		t.Fatalf("unexpected serialized length %d", len(decoded))
	}
	if decoded[0] != byte(SchemeEd25519) {
		t.Fatalf("unexpected scheme flag %d", decoded[0])
	}

	digest := TransactionDigest(transaction)
	publicKey := ed25519.PublicKey(decoded[65:])
	if !bytes.Equal(publicKey, keypair.PublicKey()) {
		t.Fatalf("serialized public key mismatch")
	}
	if !ed25519.Verify(publicKey, digest[:], decoded[1:65]) {
		t.Fatalf("signature does not verify")
	}

	address, err := VerifyTransaction(transaction, serialized)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if address != keypair.Address() {
		t.Fatalf("unexpected address %s", address)
	}
}

func TestSecp256k1SignatureVerifiesOverHashedDigest(t *testing.T) {
	keypair, err := NewSecp256k1(testSeed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	transaction := []byte("transaction-bytes")

	serialized, err := keypair.SignTransaction(transaction)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded, err := base64.StdEncoding.DecodeString(serialized)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(decoded) != 1+64+33 {
		t.Fatalf("unexpected serialized length %d", len(decoded))
	}
	if decoded[0] != byte(SchemeSecp256k1) {
		t.Fatalf("unexpected scheme flag %d", decoded[0])
	}

	digest := TransactionDigest(transaction)
	hash := sha256.Sum256(digest[:])
	recoveredMatch := false
	for code := byte(0); code < 4; code++ {
		compact := append([]byte{27 + 4 + code}, decoded[1:65]...)
		recovered, _, err := btcecdsa.RecoverCompact(compact, hash[:])
		if err == nil && bytes.Equal(recovered.SerializeCompressed(), keypair.PublicKey()) {
			recoveredMatch = true
			break
		}
	}
	if !recoveredMatch {
		t.Fatalf("signature does not recover the signing key")
	}

	address, err := VerifyTransaction(transaction, serialized)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if address != keypair.Address() {
		t.Fatalf("unexpected address %s", address)
	}
}

func TestVerifyTransactionRejectsTamperedPayload(t *testing.T) {
	for _, build := range []func([]byte) (*Keypair, error){NewEd25519, NewSecp256k1} {
		keypair, err := build(testSeed)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		serialized, err := keypair.SignTransaction([]byte("original"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := VerifyTransaction([]byte("tampered"), serialized); !errors.Is(err, ErrInvalidSignature) {
			t.Fatalf("%s: expected ErrInvalidSignature, got %v", keypair.Scheme(), err)
		}
	}

	if _, err := VerifyTransaction([]byte("original"), "!!"); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for garbage input, got %v", err)
	}
}

func TestAddressDependsOnScheme(t *testing.T) {
	edKeypair, err := NewEd25519(testSeed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	secpKeypair, err := NewSecp256k1(testSeed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, address := range []string{edKeypair.Address(), secpKeypair.Address()} {
		if !strings.HasPrefix(address, "0x") || len(address) != 66 {
			t.Fatalf("unexpected address format %s", address)
		}
	}
	if edKeypair.Address() == secpKeypair.Address() {
		t.Fatalf("expected distinct addresses per scheme")
	}
	if AddressOf(SchemeEd25519, edKeypair.PublicKey()) != edKeypair.Address() {
		t.Fatalf("AddressOf disagrees with Address")
	}
}

func TestParsePrivateKeyEncodings(t *testing.T) {
	seedHex := hex.EncodeToString(testSeed)
	keystore := base64.StdEncoding.EncodeToString(append([]byte{byte(SchemeSecp256k1)}, testSeed...))

	cases := []struct {
		raw    string
		scheme Scheme
	}{
		{raw: seedHex, scheme: SchemeEd25519},
		{raw: "0x" + seedHex, scheme: SchemeEd25519},
		{raw: "ed25519:" + seedHex, scheme: SchemeEd25519},
		{raw: "secp256k1:0x" + seedHex, scheme: SchemeSecp256k1},
		{raw: keystore, scheme: SchemeSecp256k1},
	}
	for _, testCase := range cases {
		keypair, err := ParsePrivateKey(testCase.raw)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", testCase.raw, err)
		}
		if keypair.Scheme() != testCase.scheme {
			t.Fatalf("%q: unexpected scheme %s", testCase.raw, keypair.Scheme())
		}
	}

	edKeypair, _ := ParsePrivateKey(seedHex)
	secpKeypair, _ := ParsePrivateKey(keystore)
	expectedEd, _ := NewEd25519(testSeed)
	expectedSecp, _ := NewSecp256k1(testSeed)
	if edKeypair.Address() != expectedEd.Address() || secpKeypair.Address() != expectedSecp.Address() {
		t.Fatalf("parsed keys do not match constructed keys")
	}
}

func TestParsePrivateKeyRejectsInvalidInput(t *testing.T) {
	cases := []string{
		"",
		"ed25519:abcd",
		"rsa:" + hex.EncodeToString(testSeed),
		base64.StdEncoding.EncodeToString(append([]byte{0x07}, testSeed...)),
		"not a key",
	}
	for _, raw := range cases {
		if _, err := ParsePrivateKey(raw); err == nil {
			t.Fatalf("%q: expected error", raw)
		}
	}
}

func TestSignTransactionRequiresBytes(t *testing.T) {
	keypair, err := NewEd25519(testSeed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := keypair.SignTransaction(nil); err == nil {
		t.Fatalf("expected error for empty transaction")
	}
}
