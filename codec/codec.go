// Package codec provides the canonical, deterministic, cross-platform byte
// encoding used for every signed or hashed object in the core (transactions,
// block headers, blocks, votes, validator sets). Two semantically equal
// objects must encode to identical bytes on every platform; this package
// guarantees that by delegating field-order-stable layout to
// github.com/karalabe/ssz, the one standalone SSZ codec library available in
// the retrieval pack, instead of hand-rolling a length-prefix format.
package codec

import (
	"bytes"
	"fmt"

	zondcommon "github.com/fewzfewz/scratchBlockchain/common"
	"github.com/fewzfewz/scratchBlockchain/crypto"
	"github.com/karalabe/ssz"
)

// Object is the canonical-encoding contract every hashed/signed type in the
// core implements.
type Object = ssz.Object

// Encode serializes obj into its canonical byte representation.
func Encode(obj Object) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := ssz.Encode(buf, obj); err != nil {
		return nil, fmt.Errorf("codec: encode %T: %w", obj, err)
	}
	return buf.Bytes(), nil
}

// Decode parses data (exactly the bytes produced by Encode for an object of
// the same concrete type) into obj.
func Decode(data []byte, obj Object) error {
	if err := ssz.Decode(bytes.NewReader(data), obj, uint32(len(data))); err != nil {
		return fmt.Errorf("codec: decode %T: %w", obj, err)
	}
	return nil
}

// HashObject returns the canonical object identity hash: Keccak256 of the
// object's canonical encoding. Block identity (H(header)), transaction
// hashes and vote content hashes are all computed this way.
func HashObject(obj Object) (zondcommon.Hash, error) {
	data, err := Encode(obj)
	if err != nil {
		return zondcommon.Hash{}, err
	}
	return crypto.Keccak256Hash(data), nil
}

// MustHashObject is HashObject but panics on encode failure; only safe to
// use on objects whose DefineSSZ schema is known not to fail (fixed-shape
// in-memory objects, never externally-decoded byte blobs).
func MustHashObject(obj Object) zondcommon.Hash {
	h, err := HashObject(obj)
	if err != nil {
		panic(err)
	}
	return h
}
