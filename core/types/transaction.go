package types

import (
	"errors"
	"fmt"
	"sync/atomic"

	zondcommon "github.com/fewzfewz/scratchBlockchain/common"
	"github.com/fewzfewz/scratchBlockchain/crypto"
	"github.com/karalabe/ssz"
)

// maxTxPayloadSize bounds the SSZ dynamic-bytes schema for Transaction.Payload;
// it is not a protocol gas limit, only a codec sizing ceiling.
const maxTxPayloadSize = 1 << 20

// Transaction is a signed request to transfer value and/or invoke opaque
// payload logic from Sender, admitted and ordered by the pool and included
// in a block by the proposer.
type Transaction struct {
	Sender                zondcommon.Address
	Nonce                 uint64
	ToSet                 bool
	To                    zondcommon.Address
	Value                 uint64
	Payload               []byte
	GasLimit              uint64
	MaxFeePerGas          uint64
	MaxPriorityFeePerGas  uint64
	ChainIDSet            bool
	ChainID               uint64
	Signature             zondcommon.Signature

	hash atomic.Pointer[zondcommon.Hash]
}

// signingFields is the subset of Transaction whose canonical encoding is
// signed; it excludes Signature itself.
type signingFields struct {
	Sender               zondcommon.Address
	Nonce                uint64
	ToSet                bool
	To                   zondcommon.Address
	Value                uint64
	Payload              []byte
	GasLimit             uint64
	MaxFeePerGas         uint64
	MaxPriorityFeePerGas uint64
	ChainIDSet           bool
	ChainID              uint64
}

func (s *signingFields) StaticSSZ() bool { return false }

func (s *signingFields) SizeSSZ() uint32 {
	return 20 + 8 + 1 + 20 + 8 + 4 /* payload offset */ + 8 + 8 + 8 + 1 + 8 + ssz.SizeDynamicBlob(s.Payload)
}

func (s *signingFields) DefineSSZ(codec *ssz.Codec) {
	ssz.DefineStaticBytes(codec, s.Sender[:])
	ssz.DefineUint64(codec, &s.Nonce)
	ssz.DefineBool(codec, &s.ToSet)
	ssz.DefineStaticBytes(codec, s.To[:])
	ssz.DefineUint64(codec, &s.Value)
	ssz.DefineDynamicBytesOffset(codec, &s.Payload)
	ssz.DefineUint64(codec, &s.GasLimit)
	ssz.DefineUint64(codec, &s.MaxFeePerGas)
	ssz.DefineUint64(codec, &s.MaxPriorityFeePerGas)
	ssz.DefineBool(codec, &s.ChainIDSet)
	ssz.DefineUint64(codec, &s.ChainID)
	ssz.DefineDynamicBytesContent(codec, &s.Payload, maxTxPayloadSize)
}

// SigningHash returns the canonical hash signed by Sender.
func (tx *Transaction) SigningHash() (zondcommon.Hash, error) {
	f := &signingFields{
		Sender: tx.Sender, Nonce: tx.Nonce, ToSet: tx.ToSet, To: tx.To,
		Value: tx.Value, Payload: tx.Payload, GasLimit: tx.GasLimit,
		MaxFeePerGas: tx.MaxFeePerGas, MaxPriorityFeePerGas: tx.MaxPriorityFeePerGas,
		ChainIDSet: tx.ChainIDSet, ChainID: tx.ChainID,
	}
	data, err := codecEncode(f)
	if err != nil {
		return zondcommon.Hash{}, err
	}
	return crypto.Keccak256Hash(data), nil
}

func (tx *Transaction) StaticSSZ() bool { return false }

func (tx *Transaction) SizeSSZ() uint32 {
	return 20 + 8 + 1 + 20 + 8 + 4 + 8 + 8 + 8 + 1 + 8 + 64 + ssz.SizeDynamicBlob(tx.Payload)
}

func (tx *Transaction) DefineSSZ(codec *ssz.Codec) {
	ssz.DefineStaticBytes(codec, tx.Sender[:])
	ssz.DefineUint64(codec, &tx.Nonce)
	ssz.DefineBool(codec, &tx.ToSet)
	ssz.DefineStaticBytes(codec, tx.To[:])
	ssz.DefineUint64(codec, &tx.Value)
	ssz.DefineDynamicBytesOffset(codec, &tx.Payload)
	ssz.DefineUint64(codec, &tx.GasLimit)
	ssz.DefineUint64(codec, &tx.MaxFeePerGas)
	ssz.DefineUint64(codec, &tx.MaxPriorityFeePerGas)
	ssz.DefineBool(codec, &tx.ChainIDSet)
	ssz.DefineUint64(codec, &tx.ChainID)
	ssz.DefineStaticBytes(codec, tx.Signature[:])
	ssz.DefineDynamicBytesContent(codec, &tx.Payload, maxTxPayloadSize)
}

// Hash returns the transaction's canonical identity hash, memoized.
func (tx *Transaction) Hash() zondcommon.Hash {
	if p := tx.hash.Load(); p != nil {
		return *p
	}
	data, err := codecEncode(tx)
	var h zondcommon.Hash
	if err == nil {
		h = crypto.Keccak256Hash(data)
	}
	tx.hash.Store(&h)
	return h
}

// Sign signs the transaction with secretKey, which must belong to tx.Sender.
func (tx *Transaction) Sign(secretKey edPrivateKey) error {
	digest, err := tx.SigningHash()
	if err != nil {
		return err
	}
	sig, err := crypto.Sign(secretKey, digest[:])
	if err != nil {
		return err
	}
	tx.Signature = sig
	tx.hash.Store(nil)
	return nil
}

// VerifySignature reports whether tx.Signature is a valid signature by
// tx.Sender over tx's signing hash, given the sender's public key.
func (tx *Transaction) VerifySignature(senderPublicKey zondcommon.PublicKey) bool {
	if crypto.AddressFromPublicKey(senderPublicKey) != tx.Sender {
		return false
	}
	digest, err := tx.SigningHash()
	if err != nil {
		return false
	}
	return crypto.Verify(senderPublicKey, digest[:], tx.Signature)
}

// ErrFeeCapBelowTip is returned by CheckWellFormed when the priority fee
// exceeds the fee cap.
var ErrFeeCapBelowTip = errors.New("types: max priority fee per gas exceeds max fee per gas")

// CheckWellFormed validates the static invariants of a transaction that do
// not require chain state: MaxPriorityFeePerGas <= MaxFeePerGas.
func (tx *Transaction) CheckWellFormed() error {
	if tx.MaxPriorityFeePerGas > tx.MaxFeePerGas {
		return fmt.Errorf("%w: tip=%d cap=%d", ErrFeeCapBelowTip, tx.MaxPriorityFeePerGas, tx.MaxFeePerGas)
	}
	return nil
}

// Cost returns the maximum amount (value + gas_limit*max_fee_per_gas) the
// sender's balance must cover for this transaction to be admissible.
func (tx *Transaction) Cost() uint64 {
	return tx.Value + tx.GasLimit*tx.MaxFeePerGas
}

// EffectiveFeePerGas computes min(max_fee_per_gas - base_fee, max_priority_fee_per_gas);
// the caller must already have excluded max_fee_per_gas < base_fee.
func (tx *Transaction) EffectiveFeePerGas(baseFee uint64) uint64 {
	headroom := tx.MaxFeePerGas - baseFee
	if tx.MaxPriorityFeePerGas < headroom {
		return tx.MaxPriorityFeePerGas
	}
	return headroom
}
