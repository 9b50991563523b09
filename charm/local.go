// ABOUTME: Local-only badger backend for the charm client
// ABOUTME: Used for offline runs and as an isolated store in tests
package charm

import (
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v3"
)

// badgerKV stores keys in a plain badger database with no charm account.
type badgerKV struct {
	db *badger.DB
}

func (b *badgerKV) Get(key []byte) ([]byte, error) {
	var result []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		result, err = item.ValueCopy(nil)
		return err
	})
	return result, err
}

func (b *badgerKV) Set(key, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (b *badgerKV) Delete(key []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

func (b *badgerKV) Keys() ([][]byte, error) {
	var keys [][]byte
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	return keys, err
}

// Sync is a no-op; there is no server.
func (b *badgerKV) Sync() error { return nil }

func (b *badgerKV) Reset() error { return b.db.DropAll() }

func (b *badgerKV) Close() error { return b.db.Close() }

// OpenLocal opens a client backed by a badger database in dir. The returned
// close function releases the database.
func OpenLocal(dir string) (*Client, func() error, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, nil, fmt.Errorf("failed to create library dir: %w", err)
	}

	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open badger: %w", err)
	}

	c := &Client{
		store:  &badgerKV{db: db},
		config: &Config{Host: "localhost", AutoSync: false},
		local:  true,
	}
	return c, c.Close, nil
}
