package bbolt

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/LeJamon/gocmt/internal/storage/database"
	"go.etcd.io/bbolt"
)

// BackendName is the name this backend registers under.
const BackendName = "bbolt"

// DefaultBucket holds every key written through DB.
var DefaultBucket = []byte("entries")

func init() {
	database.RegisterBackend(BackendName, func(path string) (database.DB, error) {
		return Open(path)
	})
}

// DB implements database.DB on top of bbolt.
type DB struct {
	mu     sync.RWMutex
	db     *bbolt.DB
	bucket []byte
}

// Open opens or creates the bbolt file at path and its default bucket.
func Open(path string) (*DB, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bbolt database %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(DefaultBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket for %s: %w", path, err)
	}

	return NewDB(db, DefaultBucket), nil
}

func NewDB(db *bbolt.DB, bucket []byte) *DB {
	return &DB{
		db:     db,
		bucket: bucket,
	}
}

func (b *DB) view(fn func(bucket *bbolt.Bucket) error) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.db == nil {
		return database.ErrDBClosed
	}

	return b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(b.bucket)
		if bucket == nil {
			return fmt.Errorf("bucket %s not found", string(b.bucket))
		}
		return fn(bucket)
	})
}

func (b *DB) update(fn func(bucket *bbolt.Bucket) error) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.db == nil {
		return database.ErrDBClosed
	}

	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(b.bucket)
		if bucket == nil {
			return fmt.Errorf("bucket %s not found", string(b.bucket))
		}
		return fn(bucket)
	})
}

func (b *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	var value []byte
	err := b.view(func(bucket *bbolt.Bucket) error {
		v := bucket.Get(key)
		if v == nil {
			return database.ErrKeyNotFound
		}

		// bbolt values are only valid during the transaction
		value = make([]byte, len(v))
		copy(value, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (b *DB) Write(ctx context.Context, key []byte, value []byte) error {
	return b.update(func(bucket *bbolt.Bucket) error {
		return bucket.Put(key, value)
	})
}

func (b *DB) Delete(ctx context.Context, key []byte) error {
	return b.update(func(bucket *bbolt.Bucket) error {
		return bucket.Delete(key)
	})
}

func (b *DB) Batch(ctx context.Context, ops []database.BatchOperation) error {
	return b.update(func(bucket *bbolt.Bucket) error {
		for _, op := range ops {
			var err error
			switch op.Type {
			case database.BatchPut:
				err = bucket.Put(op.Key, op.Value)
			case database.BatchDelete:
				err = bucket.Delete(op.Key)
			default:
				return fmt.Errorf("unknown batch operation type: %d", op.Type)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *DB) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.db == nil {
		return database.ErrDBClosed
	}
	err := b.db.Close()
	b.db = nil
	return err
}

// Iterator walks a key range of a bbolt database.
type Iterator struct {
	tx      *bbolt.Tx
	cursor  *bbolt.Cursor
	started bool
	current struct {
		key, value []byte
	}
	start, end []byte
}

// Iterator holds a read transaction open until Close. Closing the database
// waits for open iterators.
func (b *DB) Iterator(ctx context.Context, start, end []byte) (database.Iterator, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.db == nil {
		return nil, database.ErrDBClosed
	}

	tx, err := b.db.Begin(false)
	if err != nil {
		return nil, err
	}

	bucket := tx.Bucket(b.bucket)
	if bucket == nil {
		tx.Rollback()
		return nil, fmt.Errorf("bucket %s not found", string(b.bucket))
	}

	return &Iterator{
		tx:     tx,
		cursor: bucket.Cursor(),
		start:  start,
		end:    end,
	}, nil
}

func (it *Iterator) Next() bool {
	var k, v []byte
	if !it.started {
		it.started = true
		if it.start == nil {
			k, v = it.cursor.First()
		} else {
			k, v = it.cursor.Seek(it.start)
		}
	} else {
		k, v = it.cursor.Next()
	}

	if k == nil || (it.end != nil && bytes.Compare(k, it.end) >= 0) {
		it.current.key = nil
		it.current.value = nil
		return false
	}

	it.current.key = bytes.Clone(k)
	it.current.value = bytes.Clone(v)
	return true
}

func (it *Iterator) Key() []byte {
	return it.current.key
}

func (it *Iterator) Value() []byte {
	return it.current.value
}

func (it *Iterator) Error() error {
	return nil
}

func (it *Iterator) Close() error {
	return it.tx.Rollback()
}
