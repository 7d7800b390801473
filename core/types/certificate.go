package types

import (
	zondcommon "github.com/fewzfewz/scratchBlockchain/common"
	"github.com/holiman/uint256"
	"github.com/karalabe/ssz"
)

// maxCertificatePrecommits bounds the SSZ dynamic-slice schema at the
// largest plausible validator set size.
const maxCertificatePrecommits = 1 << 12

// FinalityCertificate is the set of precommits that witnessed quorum for a
// block; it is persisted alongside the block it finalizes.
type FinalityCertificate struct {
	BlockHash  zondcommon.Hash
	Slot       uint64
	Round      uint64
	Precommits []*Vote
}

func (c *FinalityCertificate) StaticSSZ() bool { return false }

func (c *FinalityCertificate) SizeSSZ() uint32 {
	size := uint32(32+8+8) + 4 // precommits offset
	for _, v := range c.Precommits {
		size += v.SizeSSZ()
	}
	return size
}

func (c *FinalityCertificate) DefineSSZ(codec *ssz.Codec) {
	ssz.DefineStaticBytes(codec, c.BlockHash[:])
	ssz.DefineUint64(codec, &c.Slot)
	ssz.DefineUint64(codec, &c.Round)
	ssz.DefineSliceOfStaticObjectsOffset(codec, &c.Precommits)
	ssz.DefineSliceOfStaticObjectsContent(codec, &c.Precommits, maxCertificatePrecommits)
}

// WitnessedStake sums the stake of the distinct voters present in
// Precommits against the given validator set. Callers are expected to have
// already validated that every precommit is for BlockHash at (Slot, Round).
func (c *FinalityCertificate) WitnessedStake(vs *ValidatorSet) *uint256.Int {
	total := uint256.NewInt(0)
	seen := make(map[zondcommon.Address]bool, len(c.Precommits))
	for _, v := range c.Precommits {
		if seen[v.VoterAddress] {
			continue
		}
		validator, ok := vs.Get(v.VoterAddress)
		if !ok {
			continue
		}
		seen[v.VoterAddress] = true
		total.Add(total, validator.Stake)
	}
	return total
}
