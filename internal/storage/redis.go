package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Compile-time interface check.
var _ DocumentStore = (*RedisDocuments)(nil)

// RedisDocuments implements DocumentStore with one Redis hash per document.
// Each field is stored JSON-encoded so numbers and strings survive the
// round trip. HSET only touches the named fields, which gives merge
// semantics for free.
type RedisDocuments struct {
	client *redis.Client
	prefix string
}

// NewRedisDocuments creates a Redis-backed document store. Keys are
// prefix + path.
func NewRedisDocuments(client *redis.Client, prefix string) *RedisDocuments {
	return &RedisDocuments{client: client, prefix: prefix}
}

// OpenRedis connects to Redis and verifies the connection.
func OpenRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis %q: %w", addr, err)
	}
	return client, nil
}

// Ping verifies Redis is still reachable.
func (r *RedisDocuments) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("pinging redis: %w", err)
	}
	return nil
}

// GetDocument returns the hash stored for path, or ErrNotFound when the key
// does not exist.
func (r *RedisDocuments) GetDocument(ctx context.Context, path string) (map[string]any, error) {
	if err := ValidatePath(path); err != nil {
		return nil, err
	}

	raw, err := r.client.HGetAll(ctx, r.key(path)).Result()
	if err != nil {
		return nil, fmt.Errorf("getting document %q: %w", path, err)
	}
	if len(raw) == 0 {
		return nil, ErrNotFound
	}

	fields := make(map[string]any, len(raw))
	for name, encoded := range raw {
		var v any
		if err := json.Unmarshal([]byte(encoded), &v); err != nil {
			return nil, fmt.Errorf("decoding field %q of document %q: %w", name, path, err)
		}
		fields[name] = v
	}
	return fields, nil
}

// MergeDocument sets the given fields on the document hash. A nil value
// deletes the field.
func (r *RedisDocuments) MergeDocument(ctx context.Context, path string, fields map[string]any) error {
	if err := ValidatePath(path); err != nil {
		return err
	}

	set := make(map[string]any, len(fields))
	var del []string
	for name, v := range fields {
		if v == nil {
			del = append(del, name)
			continue
		}
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding field %q of document %q: %w", name, path, err)
		}
		set[name] = string(encoded)
	}

	key := r.key(path)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(set) > 0 {
			pipe.HSet(ctx, key, set)
		}
		if len(del) > 0 {
			pipe.HDel(ctx, key, del...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("merging document %q: %w", path, err)
	}
	return nil
}

func (r *RedisDocuments) key(path string) string {
	return r.prefix + path
}
