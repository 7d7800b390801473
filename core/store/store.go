// Package store implements the durable block/state/receipt store: the
// single owner of persisted chain data, built atop core/rawdb's namespaced
// key-value schema. It enforces the invariants rawdb's plain accessors
// know nothing about — height monotonicity, finality, and all-or-nothing
// block application.
package store

import (
	"fmt"
	"sync"

	zondcommon "github.com/fewzfewz/scratchBlockchain/common"
	"github.com/fewzfewz/scratchBlockchain/core/rawdb"
	"github.com/fewzfewz/scratchBlockchain/core/types"
)

// StateDelta is a batch of account updates applied atomically.
type StateDelta map[zondcommon.Address]types.Account

// BlockApplication bundles everything a successful commit writes in one
// atomic step: the block itself, its finality certificate, the resulting
// account deltas, and the receipts for every included transaction.
type BlockApplication struct {
	Block       *types.Block
	Certificate *types.FinalityCertificate
	StateDelta  StateDelta
	Receipts    map[zondcommon.Hash]*types.Receipt
}

// Store is the exclusive owner of persisted chain bytes. The Consensus
// Engine holds one Store handle; RPC-style collaborators may hold
// read-only references to the same handle since reads never race with the
// writer's batch-scoped mutations.
type Store struct {
	db rawdb.Database

	mu              sync.RWMutex
	latestHeight    uint64
	finalizedHeight uint64
	haveLatest      bool
}

// Open wraps an already-open rawdb.Database, restoring the latest and
// finalized height pointers from meta.
func Open(db rawdb.Database) (*Store, error) {
	s := &Store{db: db}
	if h, ok := rawdb.ReadLatestHeight(db); ok {
		s.latestHeight = h
		s.haveLatest = true
	}
	if h, ok := rawdb.ReadFinalizedHeight(db); ok {
		s.finalizedHeight = h
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// LatestHeight returns the highest block height written.
func (s *Store) LatestHeight() (uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latestHeight, s.haveLatest
}

// FinalizedHeight returns the monotonic finalized-height pointer.
func (s *Store) FinalizedHeight() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.finalizedHeight
}

// GetBlockByHeight returns the block at height.
func (s *Store) GetBlockByHeight(height uint64) (*types.Block, error) {
	block, err := rawdb.ReadBlockByHeight(s.db, height)
	if err != nil {
		return nil, fmt.Errorf("%w: block at height %d", ErrNotFound, height)
	}
	return block, nil
}

// GetBlockByHash returns the block identified by hash.
func (s *Store) GetBlockByHash(hash zondcommon.Hash) (*types.Block, error) {
	block, err := rawdb.ReadBlockByHash(s.db, hash[:])
	if err != nil {
		return nil, fmt.Errorf("%w: block with hash %s", ErrNotFound, hash.Hex())
	}
	return block, nil
}

// GetCertificate returns the finality certificate stored for height.
func (s *Store) GetCertificate(height uint64) (*types.FinalityCertificate, error) {
	cert, err := rawdb.ReadCertificate(s.db, height)
	if err != nil {
		return nil, fmt.Errorf("%w: certificate at height %d", ErrNotFound, height)
	}
	return cert, nil
}

// GetAccount returns the account at addr, or the implicit zero-value
// account if addr has never been credited.
func (s *Store) GetAccount(addr zondcommon.Address) (types.Account, error) {
	return rawdb.ReadAccount(s.db, addr)
}

// GetReceipt returns the receipt recorded for txHash.
func (s *Store) GetReceipt(txHash zondcommon.Hash) (*types.Receipt, error) {
	receipt, err := rawdb.ReadReceipt(s.db, txHash)
	if err != nil {
		return nil, fmt.Errorf("%w: receipt for tx %s", ErrNotFound, txHash.Hex())
	}
	return receipt, nil
}

// PutBlock atomically writes a bare block (no certificate, no state
// delta): used by genesis ingestion for block 0, where there is nothing to
// settle. Ordinary slot commits go through ApplyBlock instead.
func (s *Store) PutBlock(block *types.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	height := block.Slot()
	if err := s.checkWritableHeightLocked(height); err != nil {
		return err
	}

	batch := s.db.NewBatch()
	if err := rawdb.WriteBlock(batch, block); err != nil {
		return fmt.Errorf("store: write block: %w", err)
	}
	if err := s.bumpLatestHeightLocked(batch, height); err != nil {
		return err
	}
	if err := batch.Write(); err != nil {
		return fmt.Errorf("store: commit batch: %w", err)
	}
	if !s.haveLatest || height > s.latestHeight {
		s.latestHeight = height
	}
	s.haveLatest = true
	return nil
}

// WriteGenesis atomically writes block 0, its initial account allocation,
// and the chain ID meta entry. It is the only way height 0 is ever
// written; ordinary slot commits always go through ApplyBlock.
func (s *Store) WriteGenesis(block *types.Block, alloc StateDelta, chainID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.haveLatest {
		return fmt.Errorf("%w: genesis already written", ErrAlreadyExists)
	}

	batch := s.db.NewBatch()
	if err := rawdb.WriteBlock(batch, block); err != nil {
		return fmt.Errorf("store: write genesis block: %w", err)
	}
	for addr, account := range alloc {
		if err := rawdb.WriteAccount(batch, addr, account); err != nil {
			return fmt.Errorf("store: write genesis account %s: %w", addr.Hex(), err)
		}
	}
	if err := rawdb.WriteChainID(batch, chainID); err != nil {
		return fmt.Errorf("store: write chain ID: %w", err)
	}
	if err := rawdb.WriteLatestHeight(batch, 0); err != nil {
		return fmt.Errorf("store: write latest height: %w", err)
	}
	if err := batch.Write(); err != nil {
		return fmt.Errorf("store: commit batch: %w", err)
	}
	s.latestHeight = 0
	s.haveLatest = true
	return nil
}

// ChainID returns the chain ID recorded at genesis, or false if genesis
// has not been written yet.
func (s *Store) ChainID() (uint64, bool) {
	return rawdb.ReadChainID(s.db)
}

// ApplyBlock performs the full atomic commit for a finalized block: the
// block, its finality certificate, the state delta, and every receipt all
// land in a single batch, or none do. A crash
// at any point before batch.Write() returns leaves the prior state intact;
// pebble's own write-ahead log guarantees a crash during Write() still
// yields an all-or-nothing result once the process restarts.
func (s *Store) ApplyBlock(app *BlockApplication) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	height := app.Block.Slot()
	if err := s.checkWritableHeightLocked(height); err != nil {
		return err
	}

	batch := s.db.NewBatch()
	if err := rawdb.WriteBlock(batch, app.Block); err != nil {
		return fmt.Errorf("store: write block: %w", err)
	}
	if err := rawdb.WriteCertificate(batch, height, app.Certificate); err != nil {
		return fmt.Errorf("store: write certificate: %w", err)
	}
	for addr, account := range app.StateDelta {
		if err := rawdb.WriteAccount(batch, addr, account); err != nil {
			return fmt.Errorf("store: write account %s: %w", addr.Hex(), err)
		}
	}
	for txHash, receipt := range app.Receipts {
		if err := rawdb.WriteReceipt(batch, txHash, receipt); err != nil {
			return fmt.Errorf("store: write receipt %s: %w", txHash.Hex(), err)
		}
	}
	if err := s.bumpLatestHeightLocked(batch, height); err != nil {
		return err
	}

	if err := batch.Write(); err != nil {
		return fmt.Errorf("store: commit batch: %w", err)
	}
	if !s.haveLatest || height > s.latestHeight {
		s.latestHeight = height
	}
	s.haveLatest = true
	return nil
}

// checkWritableHeightLocked enforces the finality and already-exists
// invariants. Callers must hold s.mu. Blocks are write-once: any prior
// occupant of an unfinalized height is a conflict, since the engine never
// rewrites a height it has already committed to.
func (s *Store) checkWritableHeightLocked(height uint64) error {
	if height <= s.finalizedHeight && s.haveLatest {
		return fmt.Errorf("%w: height %d, finalized %d", ErrFinalityViolation, height, s.finalizedHeight)
	}
	if has, err := rawdb.HasBlock(s.db, height); err == nil && has {
		return fmt.Errorf("%w: %d", ErrAlreadyExists, height)
	}
	return nil
}

func (s *Store) bumpLatestHeightLocked(batch rawdb.Batch, height uint64) error {
	if s.haveLatest && height <= s.latestHeight {
		return nil
	}
	if err := rawdb.WriteLatestHeight(batch, height); err != nil {
		return fmt.Errorf("store: write latest height: %w", err)
	}
	return nil
}

// SetFinalizedHeight advances the monotonic finalized-height pointer.
func (s *Store) SetFinalizedHeight(height uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if height < s.finalizedHeight {
		return fmt.Errorf("%w: have %d, want %d", ErrNonMonotonic, s.finalizedHeight, height)
	}
	if err := rawdb.WriteFinalizedHeight(s.db, height); err != nil {
		return fmt.Errorf("store: write finalized height: %w", err)
	}
	s.finalizedHeight = height
	return nil
}
