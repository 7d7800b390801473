// Package common holds the small fixed-size value types shared by every
// other package in the core: addresses, hashes, signatures and public keys.
package common

import (
	"encoding/hex"
	"fmt"
)

// AddressLength is the number of bytes in an Address.
const AddressLength = 20

// HashLength is the number of bytes in a Hash.
const HashLength = 32

// PublicKeyLength is the number of bytes in an Ed25519 public key.
const PublicKeyLength = 32

// SignatureLength is the number of bytes in an Ed25519 signature.
const SignatureLength = 64

// Address is a 20-byte account/validator identifier, the low 20 bytes of the
// Keccak256 hash of the owning public key.
type Address [AddressLength]byte

// BytesToAddress right-aligns b into an Address, truncating from the left if
// b is longer than AddressLength.
func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

func (a Address) Bytes() []byte { return a[:] }

func (a Address) Hex() string { return "0x" + hex.EncodeToString(a[:]) }

func (a Address) String() string { return a.Hex() }

func (a Address) IsZero() bool { return a == Address{} }

// Hash is a 32-byte canonical digest, produced by crypto.Hash.
type Hash [HashLength]byte

func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
	return h
}

func (h Hash) Bytes() []byte { return h[:] }

func (h Hash) Hex() string { return "0x" + hex.EncodeToString(h[:]) }

func (h Hash) String() string { return h.Hex() }

func (h Hash) IsZero() bool { return h == Hash{} }

// PublicKey is a 32-byte Ed25519 public key.
type PublicKey [PublicKeyLength]byte

func (pk PublicKey) Bytes() []byte { return pk[:] }

func (pk PublicKey) Hex() string { return "0x" + hex.EncodeToString(pk[:]) }

// Signature is a 64-byte Ed25519 signature.
type Signature [SignatureLength]byte

func (s Signature) Bytes() []byte { return s[:] }

func (s Signature) Hex() string { return "0x" + hex.EncodeToString(s[:]) }

// HexToHash parses a "0x"-prefixed or bare hex string into a Hash.
func HexToHash(s string) (Hash, error) {
	b, err := decodeHex(s, HashLength)
	if err != nil {
		return Hash{}, err
	}
	return BytesToHash(b), nil
}

// HexToAddress parses a "0x"-prefixed or bare hex string into an Address.
func HexToAddress(s string) (Address, error) {
	b, err := decodeHex(s, AddressLength)
	if err != nil {
		return Address{}, err
	}
	return BytesToAddress(b), nil
}

func decodeHex(s string, want int) ([]byte, error) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex string: %w", err)
	}
	if len(b) != want {
		return nil, fmt.Errorf("invalid length: have %d, want %d", len(b), want)
	}
	return b, nil
}
