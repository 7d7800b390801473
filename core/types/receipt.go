package types

import zondcommon "github.com/fewzfewz/scratchBlockchain/common"

// ReceiptStatus reports whether a transaction's execution succeeded.
type ReceiptStatus uint8

const (
	ReceiptStatusFailed ReceiptStatus = iota
	ReceiptStatusSuccess
)

// Receipt records the outcome of executing one transaction. A failed
// execution never invalidates the containing block; the fee is still
// charged.
type Receipt struct {
	Status      ReceiptStatus
	GasUsed     uint64
	BlockHeight uint64
	Logs        []byte
}
