package types

import (
	zondcommon "github.com/fewzfewz/scratchBlockchain/common"
	"github.com/fewzfewz/scratchBlockchain/crypto"
	"github.com/karalabe/ssz"
)

// VoteKind distinguishes the two phases a validator signs a vote for.
type VoteKind uint8

const (
	VoteKindPrevote VoteKind = iota
	VoteKindPrecommit
)

// Vote is a validator's signed opinion on a block at a given (slot, round,
// phase). A zero BlockHash denotes a nil vote (no value locked).
type Vote struct {
	Kind          VoteKind
	Slot          uint64
	Round         uint64
	BlockHash     zondcommon.Hash
	VoterAddress  zondcommon.Address
	Signature     zondcommon.Signature
}

// signingVoteFields is Vote without Signature, the subset the voter signs.
type signingVoteFields struct {
	Kind         VoteKind
	Slot         uint64
	Round        uint64
	BlockHash    zondcommon.Hash
	VoterAddress zondcommon.Address
}

// isPrecommit exposes Kind as the single bool the SSZ schema carries: there
// are only two vote kinds, so a boolean flag is the canonical encoding.
func (s *signingVoteFields) isPrecommit() bool { return s.Kind == VoteKindPrecommit }

func (s *signingVoteFields) StaticSSZ() bool { return true }
func (s *signingVoteFields) SizeSSZ() uint32 { return 1 + 8 + 8 + 32 + 20 }
func (s *signingVoteFields) DefineSSZ(codec *ssz.Codec) {
	precommit := s.isPrecommit()
	ssz.DefineBool(codec, &precommit)
	if precommit {
		s.Kind = VoteKindPrecommit
	} else {
		s.Kind = VoteKindPrevote
	}
	ssz.DefineUint64(codec, &s.Slot)
	ssz.DefineUint64(codec, &s.Round)
	ssz.DefineStaticBytes(codec, s.BlockHash[:])
	ssz.DefineStaticBytes(codec, s.VoterAddress[:])
}

func (v *Vote) StaticSSZ() bool { return true }

func (v *Vote) SizeSSZ() uint32 { return 1 + 8 + 8 + 32 + 20 + 64 }

func (v *Vote) DefineSSZ(codec *ssz.Codec) {
	precommit := v.Kind == VoteKindPrecommit
	ssz.DefineBool(codec, &precommit)
	if precommit {
		v.Kind = VoteKindPrecommit
	} else {
		v.Kind = VoteKindPrevote
	}
	ssz.DefineUint64(codec, &v.Slot)
	ssz.DefineUint64(codec, &v.Round)
	ssz.DefineStaticBytes(codec, v.BlockHash[:])
	ssz.DefineStaticBytes(codec, v.VoterAddress[:])
	ssz.DefineStaticBytes(codec, v.Signature[:])
}

// SigningHash returns the hash the voter signs.
func (v *Vote) SigningHash() (zondcommon.Hash, error) {
	f := &signingVoteFields{Kind: v.Kind, Slot: v.Slot, Round: v.Round, BlockHash: v.BlockHash, VoterAddress: v.VoterAddress}
	data, err := codecEncode(f)
	if err != nil {
		return zondcommon.Hash{}, err
	}
	return crypto.Keccak256Hash(data), nil
}

// Sign signs the vote with the voter's secret key.
func (v *Vote) Sign(secretKey edPrivateKey) error {
	digest, err := v.SigningHash()
	if err != nil {
		return err
	}
	sig, err := crypto.Sign(secretKey, digest[:])
	if err != nil {
		return err
	}
	v.Signature = sig
	return nil
}

// VerifySignature reports whether Signature is valid for voterKey.
func (v *Vote) VerifySignature(voterKey zondcommon.PublicKey) bool {
	digest, err := v.SigningHash()
	if err != nil {
		return false
	}
	return crypto.Verify(voterKey, digest[:], v.Signature)
}

// IsNil reports whether the vote locks no value (prevote/precommit nil).
func (v *Vote) IsNil() bool { return v.BlockHash.IsZero() }

// SameMessage reports whether two votes are for the same (slot, round,
// kind) — the precondition for equivocation: distinct BlockHash values
// under a SameMessage pair from the same voter are slashable.
func (v *Vote) SameMessage(other *Vote) bool {
	return v.Kind == other.Kind && v.Slot == other.Slot && v.Round == other.Round
}
