// Package storage layers JSON-aware values and lazy per-key expiration on top
// of a string-keyed engine.
//
// Each entry occupies up to two engine keys: the value under the caller's key
// and, when written with a TTL, an expiration record under key+MetaSuffix.
// Expiration is only checked when the entry is read; expired or unreadable
// entries are evicted at that point.
package storage

import (
	"time"

	"github.com/pkg/errors"

	"github.com/leonardcser/kvttl/engine"
	"github.com/leonardcser/kvttl/internal/logger"
)

// DefaultID is the namespace id used when neither the engine nor Options name one.
const DefaultID = "app-storage"

// Options configures New.
type Options struct {
	// ID names the namespace in log lines and ID(). It does not scope the
	// engine: engines implementing engine.Namespaced report their own id,
	// which replaces this one. For other engines, such as engine.Memory,
	// the caller keeps the two in sync.
	ID string
	// Now is the clock used for expiration. Defaults to time.Now.
	Now func() time.Time
}

// Storage is safe for concurrent use when its engine is. It holds no locks of
// its own; a Get racing a Set on the same key may observe either state.
type Storage struct {
	engine engine.Engine
	id     string
	now    func() time.Time
}

// New wraps e, an engine already scoped to one namespace. The id is taken
// from e when it implements engine.Namespaced, else from opts.ID, else DefaultID.
func New(e engine.Engine, opts Options) *Storage {
	id := opts.ID
	if ns, ok := e.(engine.Namespaced); ok && ns.Namespace() != "" {
		id = ns.Namespace()
	}
	if id == "" {
		id = DefaultID
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Storage{engine: e, id: id, now: now}
}

// ID returns the namespace id.
func (s *Storage) ID() string { return s.id }

// Set stores value under key. An empty key or a nil value is ignored. Strings
// are stored verbatim, numbers and booleans in canonical text form, and
// everything else as JSON.
//
// With ExpiresIn or ExpiresAfter an expiration record is written alongside the
// value; without one, any previous expiration record for key is removed.
func (s *Storage) Set(key string, value any, opts ...SetOption) error {
	if key == "" || isNil(value) {
		return nil
	}
	var o setOptions
	for _, opt := range opts {
		opt(&o)
	}
	if err := s.engine.Set(key, tryEncode(value)); err != nil {
		return errors.Wrapf(err, "storage: set %q", key)
	}
	mk := metaKey(key)
	if !o.hasTTL {
		return errors.Wrapf(s.engine.Delete(mk), "storage: set %q", key)
	}
	at := expiresAt(s.now().UnixMilli(), o.ttlMillis)
	return errors.Wrapf(s.engine.Set(mk, encodeMeta(at)), "storage: set %q", key)
}

// Get returns the decoded value for key, or nil when the key is empty, was
// never set, has expired, or carries a corrupt expiration record.
//
// Decoding tries JSON first, then the literals true/false, then numeric
// coercion, and finally returns the raw string. A stored string that looks
// like a number or boolean therefore comes back as one.
func (s *Storage) Get(key string) (any, error) {
	if key == "" {
		return nil, nil
	}
	raw, ok, err := s.engine.GetString(metaKey(key))
	if err != nil {
		return nil, errors.Wrapf(err, "storage: get %q", key)
	}
	if ok {
		rec, valid := tryDecodeMeta(raw)
		if !valid {
			logger.Warnf("storage %s: evicting %q: unreadable expiration record", s.id, key)
			return nil, s.evict(key)
		}
		if rec.expired(s.now()) {
			return nil, s.evict(key)
		}
	}
	stored, ok, err := s.engine.GetString(key)
	if err != nil {
		return nil, errors.Wrapf(err, "storage: get %q", key)
	}
	if !ok {
		return nil, nil
	}
	return decodeValue(stored), nil
}

// Remove deletes key and its expiration record. Removing an absent key is a no-op.
func (s *Storage) Remove(key string) error {
	if key == "" {
		return nil
	}
	return errors.Wrapf(s.evict(key), "storage: remove %q", key)
}

// Clear deletes every key in the namespace, expiration records included.
func (s *Storage) Clear() error {
	return errors.Wrapf(s.engine.ClearAll(), "storage: clear %s", s.id)
}

func (s *Storage) evict(key string) error {
	if err := s.engine.Delete(key); err != nil {
		return err
	}
	return s.engine.Delete(metaKey(key))
}
