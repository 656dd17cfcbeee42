package engine

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

// BoltDB is a bbolt file holding one bucket per namespace.
type BoltDB struct {
	db *bolt.DB
	mu sync.Mutex
	ns map[string]*Bolt
}

// Bolt is the Engine for a single namespace bucket of a BoltDB.
type Bolt struct {
	db     *bolt.DB
	bucket []byte
	mu     sync.RWMutex
}

var (
	_ Engine     = (*Bolt)(nil)
	_ Namespaced = (*Bolt)(nil)
)

// OpenBoltDB initializes or opens a bbolt file at the given path.
func OpenBoltDB(path string) (*BoltDB, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "engine: open %s", path)
	}
	return &BoltDB{db: db, ns: make(map[string]*Bolt)}, nil
}

// Namespace returns the engine for id, creating its bucket if needed.
// Repeated calls with the same id return the same engine.
func (b *BoltDB) Namespace(id string) (*Bolt, error) {
	if id == "" {
		return nil, errors.New("engine: empty namespace")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if e, ok := b.ns[id]; ok {
		return e, nil
	}
	bucket := []byte(id)
	if err := b.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		return nil, errors.Wrapf(err, "engine: create bucket %q", id)
	}
	e := &Bolt{db: b.db, bucket: bucket}
	b.ns[id] = e
	return e, nil
}

// Close closes the underlying database.
func (b *BoltDB) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Namespace returns the bucket name.
func (e *Bolt) Namespace() string { return string(e.bucket) }

func (e *Bolt) Set(key, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	err := e.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(e.bucket).Put([]byte(key), []byte(value))
	})
	return errors.Wrapf(err, "engine: bolt set %q", key)
}

func (e *Bolt) GetString(key string) (string, bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var out string
	var exists bool
	if err := e.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(e.bucket).Get([]byte(key))
		if v == nil {
			return nil
		}
		exists = true
		// v is only valid inside the transaction.
		out = string(v)
		return nil
	}); err != nil {
		return "", false, errors.Wrapf(err, "engine: bolt get %q", key)
	}
	return out, exists, nil
}

func (e *Bolt) Delete(key string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	err := e.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(e.bucket).Delete([]byte(key))
	})
	return errors.Wrapf(err, "engine: bolt delete %q", key)
}

// ClearAll drops and recreates the namespace bucket in one transaction.
func (e *Bolt) ClearAll() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	err := e.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(e.bucket); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket(e.bucket)
		return err
	})
	return errors.Wrapf(err, "engine: bolt clear %q", string(e.bucket))
}
