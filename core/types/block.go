package types

import (
	zondcommon "github.com/fewzfewz/scratchBlockchain/common"
	"github.com/karalabe/ssz"
)

// maxBlockTransactions bounds the SSZ dynamic-slice schema; it is a codec
// sizing ceiling, not the gas-derived transaction count a real block will
// ever hold.
const maxBlockTransactions = 1 << 16

// Block is an immutable, proposer-signed header plus its ordered
// transaction list. Block identity is H(header), not H(block): the
// transactions are committed into the header via ExtrinsicsRoot.
type Block struct {
	Header       *BlockHeader
	Transactions []*Transaction
}

func NewBlock(header *BlockHeader, txs []*Transaction) *Block {
	if txs == nil {
		txs = []*Transaction{}
	}
	return &Block{Header: header, Transactions: txs}
}

func (b *Block) StaticSSZ() bool { return false }

func (b *Block) SizeSSZ() uint32 {
	size := b.Header.SizeSSZ() + 4 // transactions offset
	for _, tx := range b.Transactions {
		size += tx.SizeSSZ()
	}
	return size
}

func (b *Block) DefineSSZ(codec *ssz.Codec) {
	ssz.DefineStaticObject(codec, &b.Header)
	ssz.DefineSliceOfDynamicObjectsOffset(codec, &b.Transactions)
	ssz.DefineSliceOfDynamicObjectsContent(codec, &b.Transactions, maxBlockTransactions)
}

// Hash is the block's identity, H(header).
func (b *Block) Hash() (zondcommon.Hash, error) { return b.Header.Hash() }

// Slot is a convenience accessor for b.Header.Slot.
func (b *Block) Slot() uint64 { return b.Header.Slot }
