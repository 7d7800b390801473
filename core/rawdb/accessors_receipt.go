package rawdb

import (
	"fmt"

	"github.com/fewzfewz/scratchBlockchain/codec"
	zondcommon "github.com/fewzfewz/scratchBlockchain/common"
	"github.com/fewzfewz/scratchBlockchain/core/types"
	"github.com/karalabe/ssz"
)

const maxReceiptLogsSize = 1 << 20

// receiptRecord is the SSZ wire form of types.Receipt. Status is carried
// as a bool (success/failure) since that is the schema's only two values;
// see the same treatment of types.VoteKind.
type receiptRecord struct {
	Success     bool
	GasUsed     uint64
	BlockHeight uint64
	Logs        []byte
}

func (r *receiptRecord) StaticSSZ() bool { return false }
func (r *receiptRecord) SizeSSZ() uint32 {
	return 1 + 8 + 8 + 4 + ssz.SizeDynamicBlob(r.Logs)
}
func (r *receiptRecord) DefineSSZ(c *ssz.Codec) {
	ssz.DefineBool(c, &r.Success)
	ssz.DefineUint64(c, &r.GasUsed)
	ssz.DefineUint64(c, &r.BlockHeight)
	ssz.DefineDynamicBytesOffset(c, &r.Logs)
	ssz.DefineDynamicBytesContent(c, &r.Logs, maxReceiptLogsSize)
}

// WriteReceipt persists the receipt for txHash. Writes are idempotent: a
// later write for the same hash overwrites the earlier one.
func WriteReceipt(w KeyValueWriter, txHash zondcommon.Hash, receipt *types.Receipt) error {
	rec := &receiptRecord{
		Success:     receipt.Status == types.ReceiptStatusSuccess,
		GasUsed:     receipt.GasUsed,
		BlockHeight: receipt.BlockHeight,
		Logs:        receipt.Logs,
	}
	data, err := codec.Encode(rec)
	if err != nil {
		return fmt.Errorf("rawdb: encode receipt %s: %w", txHash.Hex(), err)
	}
	return w.Put(encodeReceiptKey(txHash[:]), data)
}

// ReadReceipt returns the receipt stored for txHash.
func ReadReceipt(r KeyValueReader, txHash zondcommon.Hash) (*types.Receipt, error) {
	data, err := r.Get(encodeReceiptKey(txHash[:]))
	if err != nil {
		return nil, err
	}
	rec := &receiptRecord{}
	if err := codec.Decode(data, rec); err != nil {
		return nil, fmt.Errorf("rawdb: decode receipt %s: %w", txHash.Hex(), err)
	}
	status := types.ReceiptStatusFailed
	if rec.Success {
		status = types.ReceiptStatusSuccess
	}
	return &types.Receipt{
		Status:      status,
		GasUsed:     rec.GasUsed,
		BlockHeight: rec.BlockHeight,
		Logs:        rec.Logs,
	}, nil
}
