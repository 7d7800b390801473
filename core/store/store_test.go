package store

import (
	"testing"

	zondcommon "github.com/fewzfewz/scratchBlockchain/common"
	"github.com/fewzfewz/scratchBlockchain/core/rawdb"
	"github.com/fewzfewz/scratchBlockchain/core/types"
	"github.com/fewzfewz/scratchBlockchain/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := rawdb.OpenPebble(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	s, err := Open(db)
	require.NoError(t, err)
	return s
}

func signedBlockAt(t *testing.T, slot uint64) *types.Block {
	t.Helper()
	_, priv, err := crypto.GenerateKeypair()
	require.NoError(t, err)
	header := &types.BlockHeader{Slot: slot}
	require.NoError(t, header.Sign(priv))
	return types.NewBlock(header, nil)
}

func TestStorePutBlockAndGet(t *testing.T) {
	s := openTestStore(t)
	block := signedBlockAt(t, 1)
	require.NoError(t, s.PutBlock(block))

	got, err := s.GetBlockByHeight(1)
	require.NoError(t, err)
	wantHash, _ := block.Hash()
	gotHash, _ := got.Hash()
	require.Equal(t, wantHash, gotHash)

	height, ok := s.LatestHeight()
	require.True(t, ok)
	require.Equal(t, uint64(1), height)
}

func TestStorePutBlockRejectsAlreadyExists(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.PutBlock(signedBlockAt(t, 1)))
	err := s.PutBlock(signedBlockAt(t, 1))
	require.ErrorIs(t, err, ErrAlreadyExists)
}

func TestStoreGetBlockNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetBlockByHeight(99)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStoreSetFinalizedHeightMonotonic(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.SetFinalizedHeight(5))
	require.Equal(t, uint64(5), s.FinalizedHeight())

	err := s.SetFinalizedHeight(3)
	require.ErrorIs(t, err, ErrNonMonotonic)
	require.Equal(t, uint64(5), s.FinalizedHeight(), "a rejected decrease must not mutate state")
}

func TestStorePutBlockRejectsBelowFinalizedHeight(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.PutBlock(signedBlockAt(t, 5)))
	require.NoError(t, s.SetFinalizedHeight(5))

	err := s.PutBlock(signedBlockAt(t, 4))
	require.ErrorIs(t, err, ErrFinalityViolation)
}

func TestStoreApplyBlockIsAtomic(t *testing.T) {
	s := openTestStore(t)
	block := signedBlockAt(t, 1)
	addr := zondcommon.BytesToAddress([]byte("addr-1"))
	txHash := zondcommon.BytesToHash([]byte("tx-1"))

	app := &BlockApplication{
		Block:       block,
		Certificate: &types.FinalityCertificate{BlockHash: zondcommon.Hash{}, Slot: 1},
		StateDelta:  StateDelta{addr: {Nonce: 1, Balance: uint256.NewInt(900)}},
		Receipts:    map[zondcommon.Hash]*types.Receipt{txHash: {Status: types.ReceiptStatusSuccess, GasUsed: 21, BlockHeight: 1}},
	}
	require.NoError(t, s.ApplyBlock(app))
	require.NoError(t, s.SetFinalizedHeight(1))

	account, err := s.GetAccount(addr)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(900), account.Balance)

	receipt, err := s.GetReceipt(txHash)
	require.NoError(t, err)
	require.Equal(t, types.ReceiptStatusSuccess, receipt.Status)

	cert, err := s.GetCertificate(1)
	require.NoError(t, err)
	require.Equal(t, uint64(1), cert.Slot)
}

func TestStoreReopenRestoresHeightPointers(t *testing.T) {
	dir := t.TempDir()
	db, err := rawdb.OpenPebble(dir)
	require.NoError(t, err)
	s, err := Open(db)
	require.NoError(t, err)
	require.NoError(t, s.PutBlock(signedBlockAt(t, 3)))
	require.NoError(t, s.SetFinalizedHeight(3))
	require.NoError(t, s.Close())

	db2, err := rawdb.OpenPebble(dir)
	require.NoError(t, err)
	defer db2.Close()
	s2, err := Open(db2)
	require.NoError(t, err)

	height, ok := s2.LatestHeight()
	require.True(t, ok)
	require.Equal(t, uint64(3), height)
	require.Equal(t, uint64(3), s2.FinalizedHeight())
}
