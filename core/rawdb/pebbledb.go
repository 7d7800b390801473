package rawdb

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/cockroachdb/pebble"
	"github.com/gofrs/flock"
	"github.com/golang/snappy"
)

const (
	// hotCacheBytes sizes the in-process read cache sitting in front of
	// pebble, keyed by raw key bytes. Block and header reads dominate the
	// engine's hot path (re-execution during Prevote re-validates the
	// previous tip on every round), so caching compressed values here
	// avoids a pebble lookup for repeatedly-read recent blocks.
	hotCacheBytes = 64 * 1024 * 1024

	lockFileName = "LOCK.chaind"
)

// PebbleDatabase is the embedded-engine-backed Database used by the store.
// Values are snappy-compressed before they reach pebble and decompressed
// on read; a fastcache layer fronts both directions to keep the recent
// working set (latest blocks, hot accounts) off the disk path entirely.
type PebbleDatabase struct {
	db   *pebble.DB
	lock *flock.Flock
	hot  *fastcache.Cache

	closeOnce sync.Once
}

// OpenPebble opens (creating if absent) a pebble instance rooted at dir,
// taking an exclusive process lock on the data directory for the lifetime
// of the handle.
func OpenPebble(dir string) (*PebbleDatabase, error) {
	fl := flock.New(filepath.Join(dir, lockFileName))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("rawdb: acquire datadir lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("rawdb: datadir %s is locked by another process", dir)
	}

	opts := &pebble.Options{}
	db, err := pebble.Open(dir, opts)
	if err != nil {
		fl.Unlock()
		return nil, fmt.Errorf("rawdb: open pebble at %s: %w", dir, err)
	}

	return &PebbleDatabase{
		db:   db,
		lock: fl,
		hot:  fastcache.New(hotCacheBytes),
	}, nil
}

func (p *PebbleDatabase) Has(key []byte) (bool, error) {
	if p.hot.Has(key) {
		return true, nil
	}
	_, closer, err := p.db.Get(key)
	if err == pebble.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	closer.Close()
	return true, nil
}

func (p *PebbleDatabase) Get(key []byte) ([]byte, error) {
	if cached, ok := p.hot.HasGet(nil, key); ok {
		return snappy.Decode(nil, cached)
	}
	value, closer, err := p.db.Get(key)
	if err == pebble.ErrNotFound {
		return nil, fmt.Errorf("rawdb: key not found")
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	compressed := make([]byte, len(value))
	copy(compressed, value)
	p.hot.Set(key, compressed)

	return snappy.Decode(nil, compressed)
}

func (p *PebbleDatabase) Put(key []byte, value []byte) error {
	compressed := snappy.Encode(nil, value)
	p.hot.Set(key, compressed)
	return p.db.Set(key, compressed, pebble.Sync)
}

func (p *PebbleDatabase) Delete(key []byte) error {
	p.hot.Del(key)
	return p.db.Delete(key, pebble.Sync)
}

func (p *PebbleDatabase) NewBatch() Batch {
	return &pebbleBatch{parent: p, batch: p.db.NewBatch()}
}

func (p *PebbleDatabase) NewIterator(prefix []byte) Iterator {
	upper := upperBound(prefix)
	it, _ := p.db.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: upper})
	return &pebbleIterator{iter: it, started: false}
}

func (p *PebbleDatabase) Close() error {
	var err error
	p.closeOnce.Do(func() {
		err = p.db.Close()
		p.lock.Unlock()
	})
	return err
}

// upperBound computes the smallest key strictly greater than every key
// sharing prefix, giving pebble an exclusive range bound for prefix scans.
func upperBound(prefix []byte) []byte {
	upper := make([]byte, len(prefix))
	copy(upper, prefix)
	for i := len(upper) - 1; i >= 0; i-- {
		if upper[i] == 0xff {
			upper = upper[:i]
			continue
		}
		upper[i]++
		return upper
	}
	return nil // prefix is all 0xff bytes: unbounded above
}

type pebbleBatch struct {
	parent *PebbleDatabase
	batch  *pebble.Batch
}

func (b *pebbleBatch) Put(key, value []byte) error {
	return b.batch.Set(key, snappy.Encode(nil, value), nil)
}

func (b *pebbleBatch) Delete(key []byte) error {
	return b.batch.Delete(key, nil)
}

func (b *pebbleBatch) ValueSize() int { return b.batch.Len() }

func (b *pebbleBatch) Write() error {
	if err := b.batch.Commit(pebble.Sync); err != nil {
		return err
	}
	// Invalidate the hot cache for every key this batch touched; the
	// simplest correct policy is eviction rather than trying to keep the
	// cache's compressed copies in sync with a batched writer.
	for iter := b.batch.Reader(); ; {
		kind, key, _, ok, err := iter.Next()
		if err != nil || !ok {
			break
		}
		_ = kind
		b.parent.hot.Del(key)
	}
	return nil
}

func (b *pebbleBatch) Reset() {
	b.batch.Reset()
}

type pebbleIterator struct {
	iter    *pebble.Iterator
	started bool
}

func (it *pebbleIterator) Next() bool {
	if !it.started {
		it.started = true
		return it.iter.First()
	}
	return it.iter.Next()
}

func (it *pebbleIterator) Key() []byte { return append([]byte{}, it.iter.Key()...) }

func (it *pebbleIterator) Value() []byte {
	raw := it.iter.Value()
	decoded, err := snappy.Decode(nil, raw)
	if err != nil {
		return nil
	}
	return decoded
}

func (it *pebbleIterator) Release() { it.iter.Close() }
