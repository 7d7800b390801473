package consensus

import (
	zondcommon "github.com/fewzfewz/scratchBlockchain/common"
	"github.com/fewzfewz/scratchBlockchain/core/types"
	"github.com/holiman/uint256"
)

// roundKey identifies one (slot, round) voting window.
type roundKey struct {
	Slot  uint64
	Round uint64
}

// voteBucket holds the first vote seen from each voter for one (slot,
// round, kind), keyed by voter address. A later vote from the same voter
// disagreeing on BlockHash is equivocation; it is not stored here (see
// AddVote).
type voteBucket map[zondcommon.Address]*types.Vote

// VoteSet accumulates prevotes and precommits across rounds of a single
// height, tallies stake per candidate block hash, and records every
// equivocation it detects. It holds no locking of its own; the engine
// serializes access from its single event loop.
type VoteSet struct {
	validators *types.ValidatorSet

	prevotes   map[roundKey]voteBucket
	precommits map[roundKey]voteBucket

	evidence []*types.EquivocationEvidence
}

// NewVoteSet constructs an empty vote set scoped to the given validator
// set, valid for the height that set is active for.
func NewVoteSet(validators *types.ValidatorSet) *VoteSet {
	return &VoteSet{
		validators: validators,
		prevotes:   make(map[roundKey]voteBucket),
		precommits: make(map[roundKey]voteBucket),
	}
}

func (vs *VoteSet) bucketFor(kind types.VoteKind, key roundKey) voteBucket {
	table := vs.prevotes
	if kind == types.VoteKindPrecommit {
		table = vs.precommits
	}
	bucket, ok := table[key]
	if !ok {
		bucket = make(voteBucket)
		table[key] = bucket
	}
	return bucket
}

// AddVote records a signature-verified vote. It returns true if the vote
// was newly recorded, false if it is a duplicate of one already held. A
// vote from a voter who already has a conflicting entry for the same
// (slot, round, kind) is recorded as equivocation evidence and rejected
// (the original vote is retained, not overwritten).
func (vs *VoteSet) AddVote(vote *types.Vote) (accepted bool, equivocated *types.EquivocationEvidence) {
	key := roundKey{Slot: vote.Slot, Round: vote.Round}
	bucket := vs.bucketFor(vote.Kind, key)

	existing, seen := bucket[vote.VoterAddress]
	if !seen {
		bucket[vote.VoterAddress] = vote
		return true, nil
	}
	if existing.BlockHash == vote.BlockHash {
		return false, nil
	}
	ev := types.NewEquivocationEvidence(existing, vote)
	vs.evidence = append(vs.evidence, ev)
	return false, ev
}

// Evidence returns every equivocation observed so far.
func (vs *VoteSet) Evidence() []*types.EquivocationEvidence { return vs.evidence }

// stakeFor sums the stake backing each distinct BlockHash in bucket.
func (vs *VoteSet) stakeFor(bucket voteBucket) map[zondcommon.Hash]*uint256.Int {
	totals := make(map[zondcommon.Hash]*uint256.Int)
	for addr, vote := range bucket {
		validator, ok := vs.validators.Get(addr)
		if !ok {
			continue
		}
		total, ok := totals[vote.BlockHash]
		if !ok {
			total = uint256.NewInt(0)
			totals[vote.BlockHash] = total
		}
		total.Add(total, validator.Stake)
	}
	return totals
}

// PrevoteQuorum returns the block hash with quorum stake among prevotes
// for (slot, round), if any exists. A zero hash with ok=true denotes
// quorum on nil (no value locked).
func (vs *VoteSet) PrevoteQuorum(slot, round uint64) (hash zondcommon.Hash, ok bool) {
	return vs.quorumIn(vs.prevotes, slot, round)
}

// PrecommitQuorum returns the block hash with quorum stake among
// precommits for (slot, round), if any exists.
func (vs *VoteSet) PrecommitQuorum(slot, round uint64) (hash zondcommon.Hash, ok bool) {
	return vs.quorumIn(vs.precommits, slot, round)
}

func (vs *VoteSet) quorumIn(table map[roundKey]voteBucket, slot, round uint64) (zondcommon.Hash, bool) {
	bucket, exists := table[roundKey{Slot: slot, Round: round}]
	if !exists {
		return zondcommon.Hash{}, false
	}
	for hash, stake := range vs.stakeFor(bucket) {
		if vs.validators.HasQuorum(stake) {
			return hash, true
		}
	}
	return zondcommon.Hash{}, false
}

// Precommits returns every distinct precommit recorded for (slot, round)
// agreeing on hash — the material a FinalityCertificate is built from.
func (vs *VoteSet) Precommits(slot, round uint64, hash zondcommon.Hash) []*types.Vote {
	bucket, exists := vs.precommits[roundKey{Slot: slot, Round: round}]
	if !exists {
		return nil
	}
	var out []*types.Vote
	for _, vote := range bucket {
		if vote.BlockHash == hash {
			out = append(out, vote)
		}
	}
	return out
}
