package rawdb

import "encoding/binary"

// ReadLatestHeight returns the highest block height written, or (0, false)
// if the store is empty.
func ReadLatestHeight(r KeyValueReader) (uint64, bool) {
	return readMetaUint64(r, latestHeightKey)
}

// WriteLatestHeight records the highest block height written.
func WriteLatestHeight(w KeyValueWriter, height uint64) error {
	return writeMetaUint64(w, latestHeightKey, height)
}

// ReadFinalizedHeight returns the highest finalized height, or (0, false)
// if none has been set.
func ReadFinalizedHeight(r KeyValueReader) (uint64, bool) {
	return readMetaUint64(r, finalizedHeightKey)
}

// WriteFinalizedHeight records the finalized height pointer. Callers are
// responsible for enforcing monotonicity; this accessor performs the
// unconditional write only.
func WriteFinalizedHeight(w KeyValueWriter, height uint64) error {
	return writeMetaUint64(w, finalizedHeightKey, height)
}

// ReadChainID returns the chain identifier recorded at genesis.
func ReadChainID(r KeyValueReader) (uint64, bool) {
	return readMetaUint64(r, chainIDKey)
}

// WriteChainID records the chain identifier; written once, at genesis.
func WriteChainID(w KeyValueWriter, chainID uint64) error {
	return writeMetaUint64(w, chainIDKey, chainID)
}

func readMetaUint64(r KeyValueReader, key []byte) (uint64, bool) {
	data, err := r.Get(key)
	if err != nil || len(data) != 8 {
		return 0, false
	}
	return binary.BigEndian.Uint64(data), true
}

func writeMetaUint64(w KeyValueWriter, key []byte, v uint64) error {
	data := make([]byte, 8)
	binary.BigEndian.PutUint64(data, v)
	return w.Put(key, data)
}
