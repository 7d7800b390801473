// Package crypto implements the key generation, signing and hashing
// primitives used to sign and identify every transaction, vote and block
// header in the core. A single scheme is used uniformly for validators and
// accounts: Ed25519 (32-byte public key, 64-byte signature) over Keccak256
// digests.
package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"

	zondcommon "github.com/fewzfewz/scratchBlockchain/common"
	"golang.org/x/crypto/ed25519"
	"golang.org/x/crypto/sha3"
)

// ErrInvalidSignatureLen is returned when a signature is not exactly
// common.SignatureLength bytes.
var ErrInvalidSignatureLen = errors.New("crypto: invalid signature length")

// ErrInvalidPublicKeyLen is returned when a public key is not exactly
// common.PublicKeyLength bytes.
var ErrInvalidPublicKeyLen = errors.New("crypto: invalid public key length")

// GenerateKeypair creates a new random Ed25519 keypair.
func GenerateKeypair() (zondcommon.PublicKey, ed25519.PrivateKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return zondcommon.PublicKey{}, nil, fmt.Errorf("generate keypair: %w", err)
	}
	var out zondcommon.PublicKey
	copy(out[:], pub)
	return out, priv, nil
}

// Sign produces a 64-byte Ed25519 signature over msg.
func Sign(secretKey ed25519.PrivateKey, msg []byte) (zondcommon.Signature, error) {
	if len(secretKey) != ed25519.PrivateKeySize {
		return zondcommon.Signature{}, errors.New("crypto: invalid secret key length")
	}
	sig := ed25519.Sign(secretKey, msg)
	var out zondcommon.Signature
	copy(out[:], sig)
	return out, nil
}

// Verify reports whether sig is a valid Ed25519 signature over msg by the
// holder of publicKey.
func Verify(publicKey zondcommon.PublicKey, msg []byte, sig zondcommon.Signature) bool {
	return ed25519.Verify(publicKey[:], msg, sig[:])
}

// AddressFromPublicKey derives an Address as the low 20 bytes of the
// Keccak256 hash of the public key encoding.
func AddressFromPublicKey(pk zondcommon.PublicKey) zondcommon.Address {
	digest := Keccak256(pk[:])
	return zondcommon.BytesToAddress(digest[len(digest)-zondcommon.AddressLength:])
}

// Keccak256 returns the Keccak256 digest of the concatenation of data.
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, b := range data {
		h.Write(b)
	}
	return h.Sum(nil)
}

// Keccak256Hash returns the Keccak256 digest of the concatenation of data as
// a common.Hash.
func Keccak256Hash(data ...[]byte) zondcommon.Hash {
	return zondcommon.BytesToHash(Keccak256(data...))
}

// Hash is the canonical 32-byte digest function used for object identity
// (block hashes, tx hashes, vote content hashes): Keccak256.
func Hash(data []byte) zondcommon.Hash {
	return Keccak256Hash(data)
}

// PublicKeyFromBytes validates and wraps a raw Ed25519 public key.
func PublicKeyFromBytes(b []byte) (zondcommon.PublicKey, error) {
	if len(b) != zondcommon.PublicKeyLength {
		return zondcommon.PublicKey{}, ErrInvalidPublicKeyLen
	}
	var pk zondcommon.PublicKey
	copy(pk[:], b)
	return pk, nil
}
