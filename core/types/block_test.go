package types

import (
	"testing"

	zondcommon "github.com/fewzfewz/scratchBlockchain/common"
	"github.com/fewzfewz/scratchBlockchain/codec"
	"github.com/fewzfewz/scratchBlockchain/crypto"
	"github.com/stretchr/testify/require"
)

func newTestBlock(t *testing.T) (*Block, zondcommon.PublicKey) {
	t.Helper()
	pub, priv, err := crypto.GenerateKeypair()
	require.NoError(t, err)

	tx1, _ := newTestTransaction(t)
	tx2, _ := newTestTransaction(t)

	header := &BlockHeader{
		ParentHash:     zondcommon.BytesToHash([]byte("parent")),
		StateRoot:      zondcommon.BytesToHash([]byte("state")),
		ExtrinsicsRoot: ComputeExtrinsicsRoot([]*Transaction{tx1, tx2}),
		Slot:           5,
		Epoch:          0,
		ValidatorSetID: 1,
		GasUsed:        42,
		BaseFee:        1,
	}
	require.NoError(t, header.Sign(priv))

	return NewBlock(header, []*Transaction{tx1, tx2}), pub
}

func TestBlockEncodingRoundTrip(t *testing.T) {
	block, pub := newTestBlock(t)
	require.True(t, block.Header.VerifyProposerSignature(pub))

	data, err := codec.Encode(block)
	require.NoError(t, err)

	decoded := &Block{Header: &BlockHeader{}}
	require.NoError(t, codec.Decode(data, decoded))

	require.Equal(t, block.Header.ParentHash, decoded.Header.ParentHash)
	require.Equal(t, block.Header.Slot, decoded.Header.Slot)
	require.Len(t, decoded.Transactions, len(block.Transactions))

	wantHash, err := block.Hash()
	require.NoError(t, err)
	gotHash, err := decoded.Hash()
	require.NoError(t, err)
	require.Equal(t, wantHash, gotHash)
}

func TestBlockIdentityIsHeaderHash(t *testing.T) {
	block, _ := newTestBlock(t)
	blockHash, err := block.Hash()
	require.NoError(t, err)
	headerHash, err := block.Header.Hash()
	require.NoError(t, err)
	require.Equal(t, headerHash, blockHash)
}

func TestNewBlockWithNilTransactions(t *testing.T) {
	header := &BlockHeader{Slot: 1}
	block := NewBlock(header, nil)
	require.NotNil(t, block.Transactions)
	require.Empty(t, block.Transactions)
}
