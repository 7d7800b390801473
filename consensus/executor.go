package consensus

import (
	"errors"
	"fmt"

	zondcommon "github.com/fewzfewz/scratchBlockchain/common"
	"github.com/fewzfewz/scratchBlockchain/core/types"
)

// AccountView is the narrow read capability an Executor needs to validate
// and apply a transaction against current chain state.
type AccountView interface {
	GetAccount(addr zondcommon.Address) (types.Account, error)
}

// ErrNonceMismatch is returned when a transaction's nonce does not equal
// the sender account's current nonce at execution time.
var ErrNonceMismatch = errors.New("consensus: nonce mismatch")

// ErrInsufficientFunds is returned when the sender's balance cannot cover
// a transaction's declared cost.
var ErrInsufficientFunds = errors.New("consensus: insufficient funds")

// Executor applies one transaction against a read view of chain state,
// producing the account deltas it writes, the receipt describing the
// outcome, and the fee actually charged to the sender (gas_used *
// effective_fee_per_gas) so the caller settles rewards against the same
// quantity it debited rather than recomputing it independently. A
// returned error means the transaction could not be charged at all (bad
// nonce, insufficient funds) and must be dropped from the block entirely,
// as distinct from a Receipt with Status = Failed, which still consumes
// gas and lands in the block.
type Executor interface {
	Execute(tx *types.Transaction, view AccountView, blockHeight uint64, baseFee uint64) (delta map[zondcommon.Address]types.Account, receipt *types.Receipt, feeCharged uint64, err error)
}

// ValueTransferExecutor is the default Executor: it moves Value from
// Sender to To (crediting Sender itself if ToSet is false, i.e. a
// self-transfer/no-op payload call), charging GasLimit *
// effective_fee_per_gas regardless of payload outcome. The sender must
// still hold GasLimit*MaxFeePerGas + Value — the worst case the fee
// market could have charged, matching the Pool's admission invariant —
// even though only the effective fee is actually debited; the
// max-fee/effective-fee headroom is never taken from the sender. Payload
// bytes are opaque and never interpreted; execution always succeeds once
// funds and nonce clear, since there is no virtual machine to fail
// mid-instruction.
type ValueTransferExecutor struct{}

// NewValueTransferExecutor constructs the default executor.
func NewValueTransferExecutor() *ValueTransferExecutor { return &ValueTransferExecutor{} }

func (e *ValueTransferExecutor) Execute(tx *types.Transaction, view AccountView, blockHeight uint64, baseFee uint64) (map[zondcommon.Address]types.Account, *types.Receipt, uint64, error) {
	sender, err := view.GetAccount(tx.Sender)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("consensus: read sender account: %w", err)
	}
	if tx.Nonce != sender.Nonce {
		return nil, nil, 0, fmt.Errorf("%w: want %d, have %d", ErrNonceMismatch, sender.Nonce, tx.Nonce)
	}

	maxCost := tx.Cost()
	if sender.Balance == nil || !sender.Balance.IsUint64() || sender.Balance.Uint64() < maxCost {
		return nil, nil, 0, fmt.Errorf("%w: need %d", ErrInsufficientFunds, maxCost)
	}

	gasUsed := tx.GasLimit
	feeCharged := gasUsed * tx.EffectiveFeePerGas(baseFee)
	cost := tx.Value + feeCharged

	delta := make(map[zondcommon.Address]types.Account)

	senderAfter := sender.Clone()
	senderAfter.Nonce++
	senderAfter.Balance.SetUint64(senderAfter.Balance.Uint64() - cost)
	delta[tx.Sender] = senderAfter

	recipient := tx.Sender
	if tx.ToSet {
		recipient = tx.To
	}
	if recipient != tx.Sender {
		recipientAccount, err := view.GetAccount(recipient)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("consensus: read recipient account: %w", err)
		}
		recipientAfter := recipientAccount.Clone()
		recipientAfter.Balance.AddUint64(recipientAfter.Balance, tx.Value)
		delta[recipient] = recipientAfter
	} else {
		delta[tx.Sender].Balance.AddUint64(delta[tx.Sender].Balance, tx.Value)
	}

	receipt := &types.Receipt{
		Status:      types.ReceiptStatusSuccess,
		GasUsed:     gasUsed,
		BlockHeight: blockHeight,
	}
	return delta, receipt, feeCharged, nil
}
