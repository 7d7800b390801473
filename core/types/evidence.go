package types

import zondcommon "github.com/fewzfewz/scratchBlockchain/common"

// EquivocationEvidence records that a validator signed two distinct votes
// for the same (slot, round, kind) — proof of a double-vote. It is not SSZ
// encoded or stored with consensus objects; it is an engine-internal event
// emitted for slashing/reputation collaborators.
type EquivocationEvidence struct {
	Validator zondcommon.Address
	Slot      uint64
	Round     uint64
	Kind      VoteKind
	HashA     zondcommon.Hash
	HashB     zondcommon.Hash
}

// NewEquivocationEvidence builds evidence from two votes already confirmed
// to share (Slot, Round, Kind) and voter but disagree on BlockHash.
func NewEquivocationEvidence(a, b *Vote) *EquivocationEvidence {
	return &EquivocationEvidence{
		Validator: a.VoterAddress,
		Slot:      a.Slot,
		Round:     a.Round,
		Kind:      a.Kind,
		HashA:     a.BlockHash,
		HashB:     b.BlockHash,
	}
}
