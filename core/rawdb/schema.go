// Package rawdb implements the low-level key-value schema backing the
// store: namespaced key encodings over a single embedded database handle.
// Accessor functions here know nothing about block application atomicity
// or finality invariants; that belongs to core/store.
package rawdb

import "encoding/binary"

// Key namespaces. Every persisted key is prefixed by one of these so a
// single embedded engine instance can host all four logical maps (blocks,
// state, receipts, meta) without collision.
var (
	blockHeightPrefix = []byte("b-h-") // blockHeightPrefix + height (8 bytes BE) -> block bytes
	blockHashPrefix    = []byte("b-H-") // blockHashPrefix + hash (32 bytes) -> height (8 bytes BE)
	certificatePrefix  = []byte("b-c-") // certificatePrefix + height (8 bytes BE) -> certificate bytes
	accountPrefix      = []byte("s-a-") // accountPrefix + address (20 bytes) -> account bytes
	receiptPrefix      = []byte("r-t-") // receiptPrefix + tx hash (32 bytes) -> receipt bytes

	latestHeightKey    = []byte("m-latest-height")
	finalizedHeightKey = []byte("m-finalized-height")
	chainIDKey         = []byte("m-chain-id")
)

// encodeBlockHeightKey builds the blocks-namespace key for a block stored
// by height.
func encodeBlockHeightKey(height uint64) []byte {
	key := make([]byte, len(blockHeightPrefix)+8)
	copy(key, blockHeightPrefix)
	binary.BigEndian.PutUint64(key[len(blockHeightPrefix):], height)
	return key
}

// encodeBlockHashKey builds the blocks-namespace key mapping a block hash
// to its height.
func encodeBlockHashKey(hash []byte) []byte {
	key := make([]byte, 0, len(blockHashPrefix)+len(hash))
	key = append(key, blockHashPrefix...)
	key = append(key, hash...)
	return key
}

// encodeCertificateKey builds the blocks-namespace key for the finality
// certificate stored alongside the block at height.
func encodeCertificateKey(height uint64) []byte {
	key := make([]byte, len(certificatePrefix)+8)
	copy(key, certificatePrefix)
	binary.BigEndian.PutUint64(key[len(certificatePrefix):], height)
	return key
}

// encodeAccountKey builds the state-namespace key for an account.
func encodeAccountKey(addr []byte) []byte {
	key := make([]byte, 0, len(accountPrefix)+len(addr))
	key = append(key, accountPrefix...)
	key = append(key, addr...)
	return key
}

// encodeReceiptKey builds the receipts-namespace key for a transaction's
// receipt.
func encodeReceiptKey(txHash []byte) []byte {
	key := make([]byte, 0, len(receiptPrefix)+len(txHash))
	key = append(key, receiptPrefix...)
	key = append(key, txHash...)
	return key
}
