package types

import (
	"testing"

	"github.com/fewzfewz/scratchBlockchain/codec"
	zondcommon "github.com/fewzfewz/scratchBlockchain/common"
	"github.com/fewzfewz/scratchBlockchain/crypto"
	"github.com/davecgh/go-spew/spew"
	"github.com/kylelemons/godebug/pretty"
	"github.com/stretchr/testify/require"
)

func TestVoteSignAndVerify(t *testing.T) {
	pub, priv, err := crypto.GenerateKeypair()
	require.NoError(t, err)

	vote := &Vote{
		Kind:         VoteKindPrevote,
		Slot:         7,
		Round:        0,
		BlockHash:    zondcommon.BytesToHash([]byte("block-hash")),
		VoterAddress: crypto.AddressFromPublicKey(pub),
	}
	require.NoError(t, vote.Sign(priv))
	require.True(t, vote.VerifySignature(pub))
}

func TestVoteEncodingRoundTrip(t *testing.T) {
	pub, priv, err := crypto.GenerateKeypair()
	require.NoError(t, err)

	vote := &Vote{
		Kind:         VoteKindPrecommit,
		Slot:         7,
		Round:        2,
		BlockHash:    zondcommon.BytesToHash([]byte("block-hash")),
		VoterAddress: crypto.AddressFromPublicKey(pub),
	}
	require.NoError(t, vote.Sign(priv))

	data, err := codec.Encode(vote)
	require.NoError(t, err)

	var decoded Vote
	require.NoError(t, codec.Decode(data, &decoded))
	if diff := pretty.Compare(*vote, decoded); diff != "" {
		t.Fatalf("decoded vote diverges from original (-want +got):\n%s\nfull dump:\n%s", diff, spew.Sdump(decoded))
	}
}

func TestVoteIsNil(t *testing.T) {
	var vote Vote
	require.True(t, vote.IsNil())

	vote.BlockHash = zondcommon.BytesToHash([]byte("something"))
	require.False(t, vote.IsNil())
}

func TestVoteSameMessageDetectsEquivocation(t *testing.T) {
	pub, priv, err := crypto.GenerateKeypair()
	require.NoError(t, err)
	voter := crypto.AddressFromPublicKey(pub)

	a := &Vote{Kind: VoteKindPrevote, Slot: 7, Round: 0, VoterAddress: voter, BlockHash: zondcommon.BytesToHash([]byte("a"))}
	b := &Vote{Kind: VoteKindPrevote, Slot: 7, Round: 0, VoterAddress: voter, BlockHash: zondcommon.BytesToHash([]byte("b"))}
	require.NoError(t, a.Sign(priv))
	require.NoError(t, b.Sign(priv))

	require.True(t, a.SameMessage(b))
	require.NotEqual(t, a.BlockHash, b.BlockHash)

	ev := NewEquivocationEvidence(a, b)
	require.Equal(t, voter, ev.Validator)
	require.Equal(t, a.BlockHash, ev.HashA)
	require.Equal(t, b.BlockHash, ev.HashB)
}
