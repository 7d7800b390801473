package types

import (
	zondcommon "github.com/fewzfewz/scratchBlockchain/common"
	"github.com/fewzfewz/scratchBlockchain/crypto"
	"github.com/karalabe/ssz"
)

// BlockHeader is the fixed-size, signed summary of a block.
// ExtrinsicsRoot = H(concat(H(tx_i))); StateRoot commits to the
// post-application account map.
type BlockHeader struct {
	ParentHash       zondcommon.Hash
	StateRoot        zondcommon.Hash
	ExtrinsicsRoot   zondcommon.Hash
	Slot             uint64
	Epoch            uint64
	ValidatorSetID   uint64
	ProposerSignature zondcommon.Signature
	GasUsed          uint64
	BaseFee          uint64
}

func (h *BlockHeader) StaticSSZ() bool { return true }

func (h *BlockHeader) SizeSSZ() uint32 {
	return 32 + 32 + 32 + 8 + 8 + 8 + 64 + 8 + 8
}

func (h *BlockHeader) DefineSSZ(codec *ssz.Codec) {
	ssz.DefineStaticBytes(codec, h.ParentHash[:])
	ssz.DefineStaticBytes(codec, h.StateRoot[:])
	ssz.DefineStaticBytes(codec, h.ExtrinsicsRoot[:])
	ssz.DefineUint64(codec, &h.Slot)
	ssz.DefineUint64(codec, &h.Epoch)
	ssz.DefineUint64(codec, &h.ValidatorSetID)
	ssz.DefineStaticBytes(codec, h.ProposerSignature[:])
	ssz.DefineUint64(codec, &h.GasUsed)
	ssz.DefineUint64(codec, &h.BaseFee)
}

// signingHeaderFields is the header without ProposerSignature, the subset
// that the proposer actually signs over.
type signingHeaderFields struct {
	ParentHash     zondcommon.Hash
	StateRoot      zondcommon.Hash
	ExtrinsicsRoot zondcommon.Hash
	Slot           uint64
	Epoch          uint64
	ValidatorSetID uint64
	GasUsed        uint64
	BaseFee        uint64
}

func (s *signingHeaderFields) StaticSSZ() bool { return true }
func (s *signingHeaderFields) SizeSSZ() uint32 { return 32 + 32 + 32 + 8 + 8 + 8 + 8 + 8 }
func (s *signingHeaderFields) DefineSSZ(codec *ssz.Codec) {
	ssz.DefineStaticBytes(codec, s.ParentHash[:])
	ssz.DefineStaticBytes(codec, s.StateRoot[:])
	ssz.DefineStaticBytes(codec, s.ExtrinsicsRoot[:])
	ssz.DefineUint64(codec, &s.Slot)
	ssz.DefineUint64(codec, &s.Epoch)
	ssz.DefineUint64(codec, &s.ValidatorSetID)
	ssz.DefineUint64(codec, &s.GasUsed)
	ssz.DefineUint64(codec, &s.BaseFee)
}

// SigningHash returns the hash the proposer signs to produce
// ProposerSignature.
func (h *BlockHeader) SigningHash() (zondcommon.Hash, error) {
	f := &signingHeaderFields{
		ParentHash: h.ParentHash, StateRoot: h.StateRoot, ExtrinsicsRoot: h.ExtrinsicsRoot,
		Slot: h.Slot, Epoch: h.Epoch, ValidatorSetID: h.ValidatorSetID,
		GasUsed: h.GasUsed, BaseFee: h.BaseFee,
	}
	data, err := codecEncode(f)
	if err != nil {
		return zondcommon.Hash{}, err
	}
	return crypto.Keccak256Hash(data), nil
}

// Hash returns the block's identity, H(header).
func (h *BlockHeader) Hash() (zondcommon.Hash, error) {
	data, err := codecEncode(h)
	if err != nil {
		return zondcommon.Hash{}, err
	}
	return crypto.Keccak256Hash(data), nil
}

// Sign signs the header with the proposer's secret key.
func (h *BlockHeader) Sign(secretKey edPrivateKey) error {
	digest, err := h.SigningHash()
	if err != nil {
		return err
	}
	sig, err := crypto.Sign(secretKey, digest[:])
	if err != nil {
		return err
	}
	h.ProposerSignature = sig
	return nil
}

// VerifyProposerSignature checks ProposerSignature against proposerKey.
func (h *BlockHeader) VerifyProposerSignature(proposerKey zondcommon.PublicKey) bool {
	digest, err := h.SigningHash()
	if err != nil {
		return false
	}
	return crypto.Verify(proposerKey, digest[:], h.ProposerSignature)
}

// ComputeExtrinsicsRoot computes H(concat(H(tx_i))) for an ordered
// transaction list.
func ComputeExtrinsicsRoot(txs []*Transaction) zondcommon.Hash {
	buf := make([]byte, 0, len(txs)*zondcommon.HashLength)
	for _, tx := range txs {
		h := tx.Hash()
		buf = append(buf, h[:]...)
	}
	return crypto.Keccak256Hash(buf)
}
