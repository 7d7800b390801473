// Package txpool implements the bounded, fee-prioritized transaction
// admission queue: per-sender nonce ordering, effective-fee selection, and
// eviction under memory pressure.
package txpool

import (
	"container/heap"
	"sync"
	"time"

	zondcommon "github.com/fewzfewz/scratchBlockchain/common"
	"github.com/fewzfewz/scratchBlockchain/core/types"
	"github.com/fewzfewz/scratchBlockchain/crypto"
)

// AccountReader is the narrow read-only capability the pool needs from the
// store: current nonce and balance for admission and selection checks. It
// is satisfied by *store.Store without the pool importing the store
// package directly.
type AccountReader interface {
	GetAccount(addr zondcommon.Address) (types.Account, error)
}

// Config bounds pool memory and sets the fee floor below which a
// transaction is never admitted.
type Config struct {
	MaxCapacity int
	MaxPerSender int
	MinFeePerGas uint64
}

// Pool is the bounded, fee-ordered admission queue shared by the gossip
// ingestion task (Admit), the engine (SelectForBlock/Remove/Reshape), and
// read-only query collaborators. All mutation is serialized under a single
// mutex; SelectForBlock takes a consistent snapshot under the same lock.
type Pool struct {
	cfg     Config
	reader  AccountReader

	mu      sync.Mutex
	bySender map[zondcommon.Address]*senderList
	byHash   map[zondcommon.Hash]*pooledTx
}

// New constructs an empty pool bound to reader for nonce/balance checks.
func New(cfg Config, reader AccountReader) *Pool {
	return &Pool{
		cfg:      cfg,
		reader:   reader,
		bySender: make(map[zondcommon.Address]*senderList),
		byHash:   make(map[zondcommon.Hash]*pooledTx),
	}
}

// Len returns the total number of admitted transactions.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.byHash)
}

// Admit validates and, if valid, stores tx. It returns a *RejectError
// describing why on any rejection; callers must not treat a non-nil error
// as a fault — every Reject kind is an ordinary, expected outcome.
func (p *Pool) Admit(tx *types.Transaction, senderPubKey zondcommon.PublicKey) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := tx.CheckWellFormed(); err != nil {
		return &RejectError{Kind: RejectBadSignature}
	}
	if !tx.VerifySignature(senderPubKey) {
		return &RejectError{Kind: RejectBadSignature}
	}
	if tx.MaxFeePerGas < p.cfg.MinFeePerGas {
		return &RejectError{Kind: RejectFeeBelowFloor}
	}

	hash := tx.Hash()
	if _, exists := p.byHash[hash]; exists {
		return &RejectError{Kind: RejectDuplicateHash}
	}

	list, ok := p.bySender[tx.Sender]
	if ok && list.Len() >= p.cfg.MaxPerSender {
		return &RejectError{Kind: RejectSenderQuotaExceeded}
	}

	account, err := p.reader.GetAccount(tx.Sender)
	if err != nil {
		return &RejectError{Kind: RejectBadSignature}
	}
	if tx.Nonce < account.Nonce {
		return &RejectError{Kind: RejectNonceGap}
	}
	cost := tx.Cost()
	if account.Balance == nil || !account.Balance.IsUint64() || account.Balance.Uint64() < cost {
		return &RejectError{Kind: RejectInsufficientBalance}
	}

	if len(p.byHash) >= p.cfg.MaxCapacity {
		evicted, evictable := p.lowestEffectiveFeeLocked(tx.MaxFeePerGas)
		if !evictable {
			return &RejectError{Kind: RejectPoolFull}
		}
		p.removeLocked(evicted.tx.Hash())
	}

	entry := &pooledTx{tx: tx, admittedAt: time.Now()}
	if !ok {
		list = newSenderList()
		p.bySender[tx.Sender] = list
	}
	list.Put(entry)
	p.byHash[hash] = entry
	return nil
}

// lowestEffectiveFeeLocked finds the pool-wide entry with the lowest
// MaxFeePerGas — the eviction candidate comparison metric, since base_fee
// (needed for true effective-fee-per-gas) is only known at selection time,
// not at admission time. It is evictable only if strictly below
// incomingFee.
func (p *Pool) lowestEffectiveFeeLocked(incomingFee uint64) (*pooledTx, bool) {
	var lowest *pooledTx
	for _, list := range p.bySender {
		for _, entry := range list.txs {
			if lowest == nil || entry.tx.MaxFeePerGas < lowest.tx.MaxFeePerGas {
				lowest = entry
			}
		}
	}
	if lowest == nil || lowest.tx.MaxFeePerGas >= incomingFee {
		return nil, false
	}
	return lowest, true
}

// Remove drops the given transaction hashes from the pool, used after
// block inclusion.
func (p *Pool) Remove(hashes []zondcommon.Hash) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, h := range hashes {
		p.removeLocked(h)
	}
}

func (p *Pool) removeLocked(hash zondcommon.Hash) {
	entry, ok := p.byHash[hash]
	if !ok {
		return
	}
	delete(p.byHash, hash)
	if list, ok := p.bySender[entry.tx.Sender]; ok {
		list.Remove(entry.tx.Nonce)
		if list.Len() == 0 {
			delete(p.bySender, entry.tx.Sender)
		}
	}
}

// Reshape drops entries invalidated by a just-applied block: stale nonces
// (below the account's new current nonce) and entries the account can no
// longer afford.
func (p *Pool) Reshape() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for addr, list := range p.bySender {
		account, err := p.reader.GetAccount(addr)
		if err != nil {
			continue
		}
		for _, nonce := range list.SortedNonces() {
			entry := list.txs[nonce]
			stale := nonce < account.Nonce
			unaffordable := account.Balance == nil || !account.Balance.IsUint64() || account.Balance.Uint64() < entry.tx.Cost()
			if stale || unaffordable {
				delete(p.byHash, entry.tx.Hash())
				list.Remove(nonce)
			}
		}
		if list.Len() == 0 {
			delete(p.bySender, addr)
		}
	}
}

// SelectForBlock returns an effective-fee-descending, nonce-contiguous
// selection of pool transactions whose total gas does not exceed maxGas
// and whose MaxFeePerGas meets baseFee. Ties are broken by lower nonce
// first per sender (implicit: only the next contiguous nonce is ever
// offered), then by earliest admission time.
func (p *Pool) SelectForBlock(maxGas uint64, baseFee uint64) []*types.Transaction {
	p.mu.Lock()
	defer p.mu.Unlock()

	frontier := &frontierHeap{}
	heap.Init(frontier)

	cursors := make(map[zondcommon.Address]int, len(p.bySender))
	sortedBySender := make(map[zondcommon.Address][]uint64, len(p.bySender))
	for addr, list := range p.bySender {
		account, err := p.reader.GetAccount(addr)
		if err != nil {
			continue
		}
		nonces := list.SortedNonces()
		sortedBySender[addr] = nonces
		cursors[addr] = 0
		pushNextCandidate(frontier, list, nonces, 0, account.Nonce, baseFee)
	}

	var (
		selected []*types.Transaction
		gasUsed  uint64
	)
	for frontier.Len() > 0 {
		top := heap.Pop(frontier).(*frontierItem)
		addr := top.entry.tx.Sender
		list := p.bySender[addr]
		nonces := sortedBySender[addr]
		idx := cursors[addr]

		if gasUsed+top.entry.tx.GasLimit > maxGas {
			// This candidate doesn't fit the remaining gas budget. Do not
			// offer this sender's successor nonce: contiguity requires
			// this nonce be selected before any later one from the same
			// sender, and gasUsed only grows, so it will never fit later
			// either. Other senders' candidates already on the frontier
			// are unaffected.
			continue
		}

		selected = append(selected, top.entry.tx)
		gasUsed += top.entry.tx.GasLimit

		cursors[addr] = idx + 1
		pushNextCandidate(frontier, list, nonces, idx+1, top.entry.tx.Nonce+1, baseFee)
	}
	return selected
}

// pushNextCandidate offers sender's transaction at nonces[idx] onto the
// frontier heap, provided it is the contiguous successor of
// requiredNonce and its fee clears baseFee.
func pushNextCandidate(frontier *frontierHeap, list *senderList, nonces []uint64, idx int, requiredNonce uint64, baseFee uint64) {
	if idx >= len(nonces) {
		return
	}
	nonce := nonces[idx]
	if nonce != requiredNonce {
		return
	}
	entry := list.txs[nonce]
	if entry.tx.MaxFeePerGas < baseFee {
		return
	}
	heap.Push(frontier, &frontierItem{entry: entry, effectiveFee: entry.tx.EffectiveFeePerGas(baseFee)})
}

// AddressFromTx is a convenience re-export so callers building gossip
// verification pipelines can recover a sender's address without importing
// crypto directly.
func AddressFromTx(pubKey zondcommon.PublicKey) zondcommon.Address {
	return crypto.AddressFromPublicKey(pubKey)
}
