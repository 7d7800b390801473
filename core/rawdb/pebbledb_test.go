package rawdb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *PebbleDatabase {
	t.Helper()
	db, err := OpenPebble(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPebbleDatabasePutGetRoundTrip(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.Put([]byte("k1"), []byte("v1")))

	has, err := db.Has([]byte("k1"))
	require.NoError(t, err)
	require.True(t, has)

	val, err := db.Get([]byte("k1"))
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), val)
}

func TestPebbleDatabaseDelete(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Put([]byte("k1"), []byte("v1")))
	require.NoError(t, db.Delete([]byte("k1")))

	has, err := db.Has([]byte("k1"))
	require.NoError(t, err)
	require.False(t, has)
}

func TestPebbleDatabaseBatchIsAtomic(t *testing.T) {
	db := openTestDB(t)
	batch := db.NewBatch()
	require.NoError(t, batch.Put([]byte("a"), []byte("1")))
	require.NoError(t, batch.Put([]byte("b"), []byte("2")))
	require.NoError(t, batch.Write())

	for _, kv := range []struct{ k, v string }{{"a", "1"}, {"b", "2"}} {
		val, err := db.Get([]byte(kv.k))
		require.NoError(t, err)
		require.Equal(t, []byte(kv.v), val)
	}
}

func TestPebbleDatabaseSecondOpenFailsWhileLocked(t *testing.T) {
	dir := t.TempDir()
	db, err := OpenPebble(dir)
	require.NoError(t, err)
	defer db.Close()

	_, err = OpenPebble(dir)
	require.Error(t, err, "a second handle on a locked datadir must fail")
}

func TestPebbleDatabaseIteratorScansPrefix(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Put([]byte("p-1"), []byte("one")))
	require.NoError(t, db.Put([]byte("p-2"), []byte("two")))
	require.NoError(t, db.Put([]byte("q-1"), []byte("other")))

	it := db.NewIterator([]byte("p-"))
	defer it.Release()

	seen := map[string]string{}
	for it.Next() {
		seen[string(it.Key())] = string(it.Value())
	}
	require.Equal(t, map[string]string{"p-1": "one", "p-2": "two"}, seen)
}
