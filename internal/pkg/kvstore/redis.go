package kvstore

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Redis is a Store implementation backed by a redis hash per record key.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis creates a redis-backed store. All keys are namespaced with
// prefix to keep records apart from other users of the same instance.
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "billgate:"
	}

	return &Redis{client: client, prefix: prefix}
}

// Get returns the record stored under key, or ErrNotFound.
//
// HGETALL returns an empty map for missing keys, which here means the
// record does not exist; an empty record is never stored.
func (r *Redis) Get(ctx context.Context, key string) (Record, error) {
	fields, err := r.client.HGetAll(ctx, r.prefix+key).Result()
	if err != nil {
		return nil, err
	}

	if len(fields) == 0 {
		return nil, ErrNotFound
	}

	return Record(fields), nil
}

// Put stores the record under key, replacing any previous record.
func (r *Redis) Put(ctx context.Context, key string, rec Record) error {
	fk := r.prefix + key

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, fk)
	pipe.HSet(ctx, fk, map[string]string(rec))
	_, err := pipe.Exec(ctx)

	return err
}

// Delete removes the record under key.
func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}

// Close implements io.Closer; the redis client is owned by the caller.
func (r *Redis) Close() error {
	return nil
}
