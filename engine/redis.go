package engine

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultRedisTimeout bounds each Redis round trip when no timeout is given.
	DefaultRedisTimeout = 2 * time.Second
	redisScanBatch      = 256
)

// Redis is an Engine storing a namespace's keys as "<namespace>|<key>" in a Redis database.
type Redis struct {
	client    *redis.Client
	namespace string
	prefix    string
	timeout   time.Duration
}

var (
	_ Engine     = (*Redis)(nil)
	_ Namespaced = (*Redis)(nil)
)

// NewRedis wraps client for the given namespace. A timeout <= 0 uses DefaultRedisTimeout.
func NewRedis(client *redis.Client, namespace string, timeout time.Duration) *Redis {
	if timeout <= 0 {
		timeout = DefaultRedisTimeout
	}
	return &Redis{client: client, namespace: namespace, prefix: namespace + "|", timeout: timeout}
}

func (r *Redis) Namespace() string { return r.namespace }

func (r *Redis) key(k string) string { return r.prefix + k }

func (r *Redis) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), r.timeout)
}

func (r *Redis) Set(key, value string) error {
	ctx, cancel := r.ctx()
	defer cancel()
	return errors.Wrapf(r.client.Set(ctx, r.key(key), value, 0).Err(), "engine: redis set %q", key)
}

func (r *Redis) GetString(key string) (string, bool, error) {
	ctx, cancel := r.ctx()
	defer cancel()
	v, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "engine: redis get %q", key)
	}
	return v, true, nil
}

func (r *Redis) Delete(key string) error {
	ctx, cancel := r.ctx()
	defer cancel()
	return errors.Wrapf(r.client.Del(ctx, r.key(key)).Err(), "engine: redis delete %q", key)
}

// ClearAll scans the namespace prefix and deletes matches batch by batch.
// Each batch, one SCAN and the DEL of its matches, runs under its own
// timeout, so large namespaces are not bounded by a single deadline. Keys of other namespaces sharing the
// database are left alone.
func (r *Redis) ClearAll() error {
	match := escapeGlob(r.prefix) + "*"
	var cursor uint64
	for {
		next, err := r.clearBatch(cursor, match)
		if err != nil {
			return err
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func (r *Redis) clearBatch(cursor uint64, match string) (uint64, error) {
	ctx, cancel := r.ctx()
	defer cancel()
	keys, next, err := r.client.Scan(ctx, cursor, match, redisScanBatch).Result()
	if err != nil {
		return 0, errors.Wrap(err, "engine: redis scan")
	}
	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return 0, errors.Wrap(err, "engine: redis clear")
		}
	}
	return next, nil
}

// escapeGlob escapes the characters Redis MATCH treats as pattern syntax.
func escapeGlob(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\', '^', '-':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
