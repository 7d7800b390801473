package consensus

import (
	"testing"

	zondcommon "github.com/fewzfewz/scratchBlockchain/common"
	"github.com/fewzfewz/scratchBlockchain/core/types"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func newTestTx(t *testing.T, sender zondcommon.Address, nonce, value, gasLimit, maxFee, priorityFee uint64, to zondcommon.Address, toSet bool) *types.Transaction {
	t.Helper()
	return &types.Transaction{
		Sender: sender, Nonce: nonce, ToSet: toSet, To: to,
		Value: value, GasLimit: gasLimit, MaxFeePerGas: maxFee, MaxPriorityFeePerGas: priorityFee,
	}
}

// TestValueTransferExecutorMovesBalanceAndChargesGas reproduces spec.md
// S1: value 100, gas_limit 21, max_fee 2, max_priority 1 against base_fee
// 0 gives effective fee min(2-0,1)=1, so the sender is charged
// value + gas_used*1, not gas_limit*max_fee.
func TestValueTransferExecutorMovesBalanceAndChargesGas(t *testing.T) {
	sender := zondcommon.BytesToAddress([]byte("sender"))
	recipient := zondcommon.BytesToAddress([]byte("recipient"))
	view := &fakeAccountView{accounts: map[zondcommon.Address]types.Account{
		sender: {Nonce: 0, Balance: uint256.NewInt(1000)},
	}}

	tx := newTestTx(t, sender, 0, 100, 21, 2, 1, recipient, true)
	exec := NewValueTransferExecutor()
	delta, receipt, feeCharged, err := exec.Execute(tx, view, 1, 0)
	require.NoError(t, err)
	require.Equal(t, types.ReceiptStatusSuccess, receipt.Status)
	require.Equal(t, uint64(21), receipt.GasUsed)
	require.Equal(t, uint64(1), receipt.BlockHeight)
	require.Equal(t, uint64(21), feeCharged)

	require.Equal(t, uint256.NewInt(1000-100-21), delta[sender].Balance)
	require.Equal(t, uint64(1), delta[sender].Nonce)
	require.Equal(t, uint256.NewInt(100), delta[recipient].Balance)
}

func TestValueTransferExecutorRejectsNonceMismatch(t *testing.T) {
	sender := zondcommon.BytesToAddress([]byte("sender"))
	view := &fakeAccountView{accounts: map[zondcommon.Address]types.Account{
		sender: {Nonce: 5, Balance: uint256.NewInt(1000)},
	}}
	tx := newTestTx(t, sender, 0, 0, 21, 2, 1, zondcommon.Address{}, false)
	_, _, _, err := NewValueTransferExecutor().Execute(tx, view, 1, 0)
	require.ErrorIs(t, err, ErrNonceMismatch)
}

// TestValueTransferExecutorRejectsInsufficientFunds checks against the
// worst-case cost (gas_limit*max_fee_per_gas + value), matching the
// Pool's admission invariant, even though only the effective fee is ever
// actually debited.
func TestValueTransferExecutorRejectsInsufficientFunds(t *testing.T) {
	sender := zondcommon.BytesToAddress([]byte("sender"))
	view := &fakeAccountView{accounts: map[zondcommon.Address]types.Account{
		sender: {Nonce: 0, Balance: uint256.NewInt(10)},
	}}
	tx := newTestTx(t, sender, 0, 100, 21, 2, 2, zondcommon.Address{}, false)
	_, _, _, err := NewValueTransferExecutor().Execute(tx, view, 1, 0)
	require.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestValueTransferExecutorSelfTransferOnlyChargesGas(t *testing.T) {
	sender := zondcommon.BytesToAddress([]byte("sender"))
	view := &fakeAccountView{accounts: map[zondcommon.Address]types.Account{
		sender: {Nonce: 0, Balance: uint256.NewInt(1000)},
	}}
	tx := newTestTx(t, sender, 0, 100, 21, 2, 1, zondcommon.Address{}, false)
	delta, _, feeCharged, err := NewValueTransferExecutor().Execute(tx, view, 1, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(21), feeCharged)
	require.Equal(t, uint256.NewInt(1000-21), delta[sender].Balance)
}

// TestValueTransferExecutorChargesEffectiveFeeUnderBaseFee verifies the
// effective-fee formula itself accounts for a nonzero base_fee, not just
// the max_fee/priority split at base_fee 0.
func TestValueTransferExecutorChargesEffectiveFeeUnderBaseFee(t *testing.T) {
	sender := zondcommon.BytesToAddress([]byte("sender"))
	view := &fakeAccountView{accounts: map[zondcommon.Address]types.Account{
		sender: {Nonce: 0, Balance: uint256.NewInt(1000)},
	}}
	// max_fee=10, priority=3, base_fee=4 -> effective = min(10-4, 3) = 3.
	tx := newTestTx(t, sender, 0, 0, 21, 10, 3, zondcommon.Address{}, false)
	delta, _, feeCharged, err := NewValueTransferExecutor().Execute(tx, view, 1, 4)
	require.NoError(t, err)
	require.Equal(t, uint64(21*3), feeCharged)
	require.Equal(t, uint256.NewInt(1000-21*3), delta[sender].Balance)
}
