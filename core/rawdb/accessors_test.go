package rawdb

import (
	"testing"

	zondcommon "github.com/fewzfewz/scratchBlockchain/common"
	"github.com/fewzfewz/scratchBlockchain/core/types"
	"github.com/fewzfewz/scratchBlockchain/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestAccountReadWriteRoundTrip(t *testing.T) {
	db := openTestDB(t)
	addr := zondcommon.BytesToAddress([]byte("addr-1"))

	zero, err := ReadAccount(db, addr)
	require.NoError(t, err)
	require.Equal(t, uint64(0), zero.Nonce)
	require.Equal(t, uint256.NewInt(0), zero.Balance)

	account := types.Account{Nonce: 3, Balance: uint256.NewInt(12345)}
	require.NoError(t, WriteAccount(db, addr, account))

	got, err := ReadAccount(db, addr)
	require.NoError(t, err)
	require.Equal(t, account.Nonce, got.Nonce)
	require.Equal(t, account.Balance, got.Balance)
}

func TestReceiptReadWriteRoundTrip(t *testing.T) {
	db := openTestDB(t)
	txHash := zondcommon.BytesToHash([]byte("tx-1"))
	receipt := &types.Receipt{Status: types.ReceiptStatusSuccess, GasUsed: 21, BlockHeight: 5, Logs: []byte("log-bytes")}

	require.NoError(t, WriteReceipt(db, txHash, receipt))

	got, err := ReadReceipt(db, txHash)
	require.NoError(t, err)
	require.Equal(t, receipt, got)
}

func TestBlockReadWriteByHeightAndHash(t *testing.T) {
	db := openTestDB(t)
	_, priv, err := crypto.GenerateKeypair()
	require.NoError(t, err)

	header := &types.BlockHeader{Slot: 9, ExtrinsicsRoot: zondcommon.BytesToHash([]byte("ext"))}
	require.NoError(t, header.Sign(priv))
	block := types.NewBlock(header, nil)

	require.NoError(t, WriteBlock(db, block))

	byHeight, err := ReadBlockByHeight(db, 9)
	require.NoError(t, err)
	wantHash, err := block.Hash()
	require.NoError(t, err)
	gotHash, err := byHeight.Hash()
	require.NoError(t, err)
	require.Equal(t, wantHash, gotHash)

	byHash, err := ReadBlockByHash(db, wantHash[:])
	require.NoError(t, err)
	gotHash2, err := byHash.Hash()
	require.NoError(t, err)
	require.Equal(t, wantHash, gotHash2)

	has, err := HasBlock(db, 9)
	require.NoError(t, err)
	require.True(t, has)

	has, err = HasBlock(db, 10)
	require.NoError(t, err)
	require.False(t, has)
}

func TestMetaHeightRoundTrip(t *testing.T) {
	db := openTestDB(t)

	_, ok := ReadLatestHeight(db)
	require.False(t, ok)

	require.NoError(t, WriteLatestHeight(db, 42))
	got, ok := ReadLatestHeight(db)
	require.True(t, ok)
	require.Equal(t, uint64(42), got)

	require.NoError(t, WriteFinalizedHeight(db, 40))
	got, ok = ReadFinalizedHeight(db)
	require.True(t, ok)
	require.Equal(t, uint64(40), got)
}
