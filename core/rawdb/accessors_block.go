package rawdb

import (
	"encoding/binary"
	"fmt"

	"github.com/fewzfewz/scratchBlockchain/codec"
	"github.com/fewzfewz/scratchBlockchain/core/types"
)

// WriteBlock persists block under both its height and hash keys. Callers
// needing atomicity across the block, its certificate and the height
// pointer must issue these through a single Batch.
func WriteBlock(w KeyValueWriter, block *types.Block) error {
	data, err := codec.Encode(block)
	if err != nil {
		return fmt.Errorf("rawdb: encode block: %w", err)
	}
	height := block.Slot()
	if err := w.Put(encodeBlockHeightKey(height), data); err != nil {
		return err
	}
	hash, err := block.Hash()
	if err != nil {
		return fmt.Errorf("rawdb: hash block: %w", err)
	}
	heightBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(heightBytes, height)
	return w.Put(encodeBlockHashKey(hash[:]), heightBytes)
}

// ReadBlockByHeight returns the block stored at height, or an error if
// absent.
func ReadBlockByHeight(r KeyValueReader, height uint64) (*types.Block, error) {
	data, err := r.Get(encodeBlockHeightKey(height))
	if err != nil {
		return nil, err
	}
	block := &types.Block{Header: &types.BlockHeader{}}
	if err := codec.Decode(data, block); err != nil {
		return nil, fmt.Errorf("rawdb: decode block at height %d: %w", height, err)
	}
	return block, nil
}

// ReadBlockByHash resolves hash to a height and then to a block.
func ReadBlockByHash(r KeyValueReader, hash []byte) (*types.Block, error) {
	heightBytes, err := r.Get(encodeBlockHashKey(hash))
	if err != nil {
		return nil, err
	}
	height := binary.BigEndian.Uint64(heightBytes)
	return ReadBlockByHeight(r, height)
}

// HasBlock reports whether a block is stored at height.
func HasBlock(r KeyValueReader, height uint64) (bool, error) {
	return r.Has(encodeBlockHeightKey(height))
}

// WriteCertificate persists the finality certificate for the block at
// height.
func WriteCertificate(w KeyValueWriter, height uint64, cert *types.FinalityCertificate) error {
	data, err := codec.Encode(cert)
	if err != nil {
		return fmt.Errorf("rawdb: encode certificate: %w", err)
	}
	return w.Put(encodeCertificateKey(height), data)
}

// ReadCertificate returns the finality certificate stored for height.
func ReadCertificate(r KeyValueReader, height uint64) (*types.FinalityCertificate, error) {
	data, err := r.Get(encodeCertificateKey(height))
	if err != nil {
		return nil, err
	}
	cert := &types.FinalityCertificate{}
	if err := codec.Decode(data, cert); err != nil {
		return nil, fmt.Errorf("rawdb: decode certificate at height %d: %w", height, err)
	}
	return cert, nil
}
