package txpool

import (
	"sort"
	"time"

	"github.com/fewzfewz/scratchBlockchain/core/types"
	mapset "github.com/deckarep/golang-set/v2"
)

// pooledTx is a transaction plus the pool-local bookkeeping the selection
// tie-break rule needs (earliest admission time).
type pooledTx struct {
	tx          *types.Transaction
	admittedAt  time.Time
}

// senderList holds one sender's queued transactions keyed by nonce. It
// mirrors the present nonces in a set; SortedNonces copies that set and
// sorts it ascending on every call.
type senderList struct {
	txs    map[uint64]*pooledTx
	nonces mapset.Set[uint64]
}

func newSenderList() *senderList {
	return &senderList{txs: make(map[uint64]*pooledTx), nonces: mapset.NewSet[uint64]()}
}

func (l *senderList) Len() int { return len(l.txs) }

func (l *senderList) Put(entry *pooledTx) {
	l.txs[entry.tx.Nonce] = entry
	l.nonces.Add(entry.tx.Nonce)
}

func (l *senderList) Remove(nonce uint64) {
	delete(l.txs, nonce)
	l.nonces.Remove(nonce)
}

// SortedNonces returns every stored nonce in ascending order.
func (l *senderList) SortedNonces() []uint64 {
	out := l.nonces.ToSlice()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
