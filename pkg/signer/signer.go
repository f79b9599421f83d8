// Package signer signs ledger transactions with Ed25519 or secp256k1 keys and
// derives the matching account addresses.
//
// A transaction is signed over the BLAKE2b-256 digest of its intent message
// (three intent bytes followed by the serialized transaction). Ed25519 signs
// the digest directly; secp256k1 signs SHA-256 of the digest. The serialized
// signature is base64(flag || signature || public key).
package signer

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"golang.org/x/crypto/blake2b"
)

// Scheme is the signature scheme flag.
type Scheme byte

const (
	SchemeEd25519   Scheme = 0x00
	SchemeSecp256k1 Scheme = 0x01
)

const (
	privateKeyLength         = 32
	ed25519SignatureLength   = ed25519.SignatureSize
	secp256k1SignatureLength = 64
	secp256k1PublicKeyLength = 33
	compactSignatureLength   = 65
)

// transactionIntent is the intent prefix of a transaction: scope
// TransactionData, version V0, app id Sui.
var transactionIntent = [3]byte{0, 0, 0}

var ErrInvalidSignature = errors.New("invalid signature")

func (s Scheme) String() string {
	switch s {
	case SchemeEd25519:
		return "ed25519"
	case SchemeSecp256k1:
		return "secp256k1"
	default:
		return fmt.Sprintf("scheme(%d)", byte(s))
	}
}

// Keypair is a private key of either supported scheme.
type Keypair struct {
	scheme    Scheme
	ed25519   ed25519.PrivateKey
	secp256k1 *btcec.PrivateKey
}

// NewEd25519 builds an Ed25519 keypair from a 32-byte seed.
func NewEd25519(seed []byte) (*Keypair, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("ed25519 seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return &Keypair{scheme: SchemeEd25519, ed25519: ed25519.NewKeyFromSeed(seed)}, nil
}

// NewSecp256k1 builds a secp256k1 keypair from a 32-byte secret.
func NewSecp256k1(secret []byte) (*Keypair, error) {
	if len(secret) != privateKeyLength {
		return nil, fmt.Errorf("secp256k1 key must be %d bytes, got %d", privateKeyLength, len(secret))
	}
	privateKey, _ := btcec.PrivKeyFromBytes(secret)
	if privateKey.Key.IsZero() {
		return nil, fmt.Errorf("secp256k1 key is out of range")
	}
	return &Keypair{scheme: SchemeSecp256k1, secp256k1: privateKey}, nil
}

// ParsePrivateKey accepts:
//   - "ed25519:<hex>" or "secp256k1:<hex>"
//   - bare 32-byte hex, read as an Ed25519 seed
//   - base64 of flag || 32-byte key, the keystore encoding
func ParsePrivateKey(raw string) (*Keypair, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("private key is required")
	}

	if scheme, encoded, ok := strings.Cut(trimmed, ":"); ok {
		secret, err := decodeHex(encoded)
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(strings.TrimSpace(scheme)) {
		case "ed25519":
			return NewEd25519(secret)
		case "secp256k1":
			return NewSecp256k1(secret)
		default:
			return nil, fmt.Errorf("unsupported key scheme %q", scheme)
		}
	}

	if secret, err := decodeHex(trimmed); err == nil {
		return NewEd25519(secret)
	}

	decoded, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil || len(decoded) != privateKeyLength+1 {
		return nil, fmt.Errorf("unrecognised private key encoding")
	}
	switch Scheme(decoded[0]) {
	case SchemeEd25519:
		return NewEd25519(decoded[1:])
	case SchemeSecp256k1:
		return NewSecp256k1(decoded[1:])
	default:
		return nil, fmt.Errorf("unsupported key scheme flag %d", decoded[0])
	}
}

// Scheme returns the signature scheme of the key.
func (k *Keypair) Scheme() Scheme {
	return k.scheme
}

// PublicKey returns the raw public key: 32 bytes for Ed25519, 33 compressed
// bytes for secp256k1.
func (k *Keypair) PublicKey() []byte {
	if k.scheme == SchemeSecp256k1 {
		return k.secp256k1.PubKey().SerializeCompressed()
	}
	return append([]byte(nil), k.ed25519.Public().(ed25519.PublicKey)...)
}

// Address returns the account address controlled by the key.
func (k *Keypair) Address() string {
	return AddressOf(k.scheme, k.PublicKey())
}

// AddressOf derives the address of a public key: BLAKE2b-256(flag || key).
func AddressOf(scheme Scheme, publicKey []byte) string {
	payload := make([]byte, 0, len(publicKey)+1)
	payload = append(payload, byte(scheme))
	payload = append(payload, publicKey...)
	digest := blake2b.Sum256(payload)
	return "0x" + hex.EncodeToString(digest[:])
}

// TransactionDigest is the digest signed for transactionBytes.
func TransactionDigest(transactionBytes []byte) [32]byte {
	message := make([]byte, 0, len(transactionIntent)+len(transactionBytes))
	message = append(message, transactionIntent[:]...)
	message = append(message, transactionBytes...)
	return blake2b.Sum256(message)
}

// SignTransaction signs transactionBytes and returns the serialized signature
// accepted by sui_executeTransactionBlock.
func (k *Keypair) SignTransaction(transactionBytes []byte) (string, error) {
	if len(transactionBytes) == 0 {
		return "", fmt.Errorf("transaction bytes are required")
	}
	digest := TransactionDigest(transactionBytes)

	var signature []byte
	switch k.scheme {
	case SchemeEd25519:
		signature = ed25519.Sign(k.ed25519, digest[:])
	case SchemeSecp256k1:
		hash := sha256.Sum256(digest[:])
		compact := btcecdsa.SignCompact(k.secp256k1, hash[:], true)
		if len(compact) != compactSignatureLength {
			return "", fmt.Errorf("unexpected secp256k1 signature length %d", len(compact))
		}
		signature = compact[1:]
	default:
		return "", fmt.Errorf("unsupported key scheme %s", k.scheme)
	}

	publicKey := k.PublicKey()
	serialized := make([]byte, 0, 1+len(signature)+len(publicKey))
	serialized = append(serialized, byte(k.scheme))
	serialized = append(serialized, signature...)
	serialized = append(serialized, publicKey...)
	return base64.StdEncoding.EncodeToString(serialized), nil
}

// VerifyTransaction checks a serialized signature over transactionBytes and
// returns the signer's address.
func VerifyTransaction(transactionBytes []byte, serialized string) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(serialized))
	if err != nil || len(decoded) == 0 {
		return "", fmt.Errorf("%w: not base64", ErrInvalidSignature)
	}
	digest := TransactionDigest(transactionBytes)

	scheme := Scheme(decoded[0])
	body := decoded[1:]
	switch scheme {
	case SchemeEd25519:
		if len(body) != ed25519SignatureLength+ed25519.PublicKeySize {
			return "", fmt.Errorf("%w: unexpected length %d", ErrInvalidSignature, len(decoded))
		}
		signature, publicKey := body[:ed25519SignatureLength], body[ed25519SignatureLength:]
		if !ed25519.Verify(publicKey, digest[:], signature) {
			return "", ErrInvalidSignature
		}
		return AddressOf(scheme, publicKey), nil
	case SchemeSecp256k1:
		if len(body) != secp256k1SignatureLength+secp256k1PublicKeyLength {
			return "", fmt.Errorf("%w: unexpected length %d", ErrInvalidSignature, len(decoded))
		}
		signature, publicKeyBytes := body[:secp256k1SignatureLength], body[secp256k1SignatureLength:]
		publicKey, err := btcec.ParsePubKey(publicKeyBytes)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
		var r, s btcec.ModNScalar
		if r.SetByteSlice(signature[:32]) || s.SetByteSlice(signature[32:]) {
			return "", fmt.Errorf("%w: scalar overflow", ErrInvalidSignature)
		}
		hash := sha256.Sum256(digest[:])
		if !btcecdsa.NewSignature(&r, &s).Verify(hash[:], publicKey) {
			return "", ErrInvalidSignature
		}
		return AddressOf(scheme, publicKeyBytes), nil
	default:
		return "", fmt.Errorf("%w: unsupported scheme flag %d", ErrInvalidSignature, decoded[0])
	}
}

func decodeHex(raw string) ([]byte, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(raw), "0x"), "0X")
	decoded, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid hex key: %w", err)
	}
	if len(decoded) != privateKeyLength {
		return nil, fmt.Errorf("key must be %d bytes, got %d", privateKeyLength, len(decoded))
	}
	return decoded, nil
}
