package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Adda-Baaj/khobor-watch/internal/domain"
	"github.com/redis/go-redis/v9"
)

// redisStore keeps the set as a list of JSON records under key, plus a marker key.
type redisStore struct {
	client *redis.Client
	key    string
}

func newRedisStore(addr, key string) *redisStore {
	return &redisStore{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		key:    key,
	}
}

func (r *redisStore) markerKey() string { return r.key + ":saved_at" }

func (r *redisStore) Load(ctx context.Context) (*domain.SeenSet, bool, error) {
	n, err := r.client.Exists(ctx, r.markerKey()).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis exists: %w", err)
	}
	if n == 0 {
		return domain.NewSeenSet(), false, nil
	}

	items, err := r.client.LRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis lrange: %w", err)
	}
	seen := domain.NewSeenSet()
	for i, item := range items {
		a, err := decodeRecord([]byte(item))
		if err != nil {
			return nil, false, fmt.Errorf("decode redis entry %d: %w", i, err)
		}
		seen.Add(a)
	}
	return seen, true, nil
}

// Save replaces the list and marker inside one MULTI/EXEC.
func (r *redisStore) Save(ctx context.Context, seen *domain.SeenSet) error {
	records := seen.Records()
	values := make([]any, 0, len(records))
	for _, a := range records {
		val, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("encode record: %w", err)
		}
		values = append(values, string(val))
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key)
		if len(values) > 0 {
			pipe.RPush(ctx, r.key, values...)
		}
		pipe.Set(ctx, r.markerKey(), time.Now().UTC().Format(time.RFC3339), 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save: %w", err)
	}
	return nil
}

func (r *redisStore) Close() error { return r.client.Close() }
