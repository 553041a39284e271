package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/Adda-Baaj/khobor-watch/internal/domain"
)

// Package storage persists the seen-set between runs.

// Backend names accepted by NewStore.
const (
	TypeJSON  = "json"
	TypeBBolt = "bbolt"
	TypeRedis = "redis"
)

// Store loads and saves the whole seen-set.
type Store interface {
	// Load returns the persisted set. found is false when no state exists yet.
	Load(ctx context.Context) (seen *domain.SeenSet, found bool, err error)
	// Save replaces the persisted set atomically.
	Save(ctx context.Context, seen *domain.SeenSet) error
	Close() error
}

// Options carries backend locations and the policy that shapes the json file.
type Options struct {
	Policy    Policy
	StatePath string
	BoltPath  string
	RedisAddr string
	RedisKey  string
}

// NewStore creates the configured storage backend.
func NewStore(typ string, opts Options) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(typ)) {
	case "", TypeJSON:
		if strings.TrimSpace(opts.StatePath) == "" {
			return nil, fmt.Errorf("json storage requires a state path")
		}
		return newJSONStore(opts.StatePath, opts.Policy == PolicySnapshot), nil
	case TypeBBolt:
		if strings.TrimSpace(opts.BoltPath) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(opts.BoltPath)
	case TypeRedis:
		if strings.TrimSpace(opts.RedisAddr) == "" || strings.TrimSpace(opts.RedisKey) == "" {
			return nil, fmt.Errorf("redis storage requires an address and a key")
		}
		return newRedisStore(opts.RedisAddr, opts.RedisKey), nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}
