package consensus

import (
	"testing"

	zondcommon "github.com/fewzfewz/scratchBlockchain/common"
	"github.com/fewzfewz/scratchBlockchain/core/types"
	"github.com/fewzfewz/scratchBlockchain/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func newValidator(t *testing.T, stake uint64) (*types.Validator, zondcommon.Address, []byte) {
	t.Helper()
	pub, priv, err := crypto.GenerateKeypair()
	require.NoError(t, err)
	addr := crypto.AddressFromPublicKey(pub)
	return &types.Validator{Address: addr, PublicKey: pub, Stake: uint256.NewInt(stake)}, addr, priv
}

func signedVote(t *testing.T, priv []byte, kind types.VoteKind, slot, round uint64, hash zondcommon.Hash, voter zondcommon.Address) *types.Vote {
	t.Helper()
	v := &types.Vote{Kind: kind, Slot: slot, Round: round, BlockHash: hash, VoterAddress: voter}
	require.NoError(t, v.Sign(priv))
	return v
}

func TestVoteSetReachesQuorum(t *testing.T) {
	vA, addrA, privA := newValidator(t, 100)
	vB, addrB, privB := newValidator(t, 100)
	vC, _, _ := newValidator(t, 100)
	vs := &types.ValidatorSet{ID: 1, Validators: []*types.Validator{vA, vB, vC}}

	set := NewVoteSet(vs)
	hash := zondcommon.BytesToHash([]byte("block-1"))

	_, hadQuorum := set.PrevoteQuorum(0, 0)
	require.False(t, hadQuorum)

	accepted, ev := set.AddVote(signedVote(t, privA, types.VoteKindPrevote, 0, 0, hash, addrA))
	require.True(t, accepted)
	require.Nil(t, ev)
	_, hadQuorum = set.PrevoteQuorum(0, 0)
	require.False(t, hadQuorum, "one of three validators is not quorum")

	accepted, ev = set.AddVote(signedVote(t, privB, types.VoteKindPrevote, 0, 0, hash, addrB))
	require.True(t, accepted)
	require.Nil(t, ev)
	gotHash, hadQuorum := set.PrevoteQuorum(0, 0)
	require.True(t, hadQuorum)
	require.Equal(t, hash, gotHash)
}

func TestVoteSetDetectsEquivocation(t *testing.T) {
	vA, addrA, privA := newValidator(t, 100)
	vs := &types.ValidatorSet{ID: 1, Validators: []*types.Validator{vA}}
	set := NewVoteSet(vs)

	hashA := zondcommon.BytesToHash([]byte("block-a"))
	hashB := zondcommon.BytesToHash([]byte("block-b"))

	accepted, ev := set.AddVote(signedVote(t, privA, types.VoteKindPrevote, 0, 0, hashA, addrA))
	require.True(t, accepted)
	require.Nil(t, ev)

	accepted, ev = set.AddVote(signedVote(t, privA, types.VoteKindPrevote, 0, 0, hashB, addrA))
	require.False(t, accepted)
	require.NotNil(t, ev)
	require.Equal(t, addrA, ev.Validator)
	require.Equal(t, hashA, ev.HashA)
	require.Equal(t, hashB, ev.HashB)
	require.Len(t, set.Evidence(), 1)
}

func TestVoteSetDuplicateVoteIsNotEquivocation(t *testing.T) {
	vA, addrA, privA := newValidator(t, 100)
	vs := &types.ValidatorSet{ID: 1, Validators: []*types.Validator{vA}}
	set := NewVoteSet(vs)
	hash := zondcommon.BytesToHash([]byte("block-1"))

	vote := signedVote(t, privA, types.VoteKindPrevote, 0, 0, hash, addrA)
	accepted, ev := set.AddVote(vote)
	require.True(t, accepted)
	require.Nil(t, ev)

	accepted, ev = set.AddVote(vote)
	require.False(t, accepted)
	require.Nil(t, ev)
	require.Empty(t, set.Evidence())
}

func TestVoteSetPrecommitsReturnsOnlyAgreeingVoters(t *testing.T) {
	vA, addrA, privA := newValidator(t, 100)
	vB, addrB, privB := newValidator(t, 100)
	vs := &types.ValidatorSet{ID: 1, Validators: []*types.Validator{vA, vB}}
	set := NewVoteSet(vs)

	hash := zondcommon.BytesToHash([]byte("block-1"))
	other := zondcommon.BytesToHash([]byte("block-2"))

	set.AddVote(signedVote(t, privA, types.VoteKindPrecommit, 0, 0, hash, addrA))
	set.AddVote(signedVote(t, privB, types.VoteKindPrecommit, 0, 0, other, addrB))

	precommits := set.Precommits(0, 0, hash)
	require.Len(t, precommits, 1)
	require.Equal(t, addrA, precommits[0].VoterAddress)
}
