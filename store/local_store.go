package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/serenity-app/serenity/gamification"
)

// DefaultLocalKey is the fixed key of the single guest profile.
const DefaultLocalKey = "serenity_gamification"

// LocalStore is the guest fallback: one profile under a fixed key, whatever
// user id is passed. It prefers Redis and falls back to process memory when
// no client is configured.
type LocalStore struct {
	rc      *redis.Client
	key     string
	timeout time.Duration

	mu  sync.RWMutex
	mem []byte
}

// NewLocalStore creates a local store. rc may be nil; key defaults to DefaultLocalKey.
func NewLocalStore(rc *redis.Client, key string) *LocalStore {
	if key == "" {
		key = DefaultLocalKey
	}
	return &LocalStore{rc: rc, key: key, timeout: 2 * time.Second}
}

func (s *LocalStore) Key() string {
	return s.key
}

func (s *LocalStore) Load(ctx context.Context, _ string) (gamification.State, error) {
	b, err := s.get(ctx)
	if err != nil {
		return gamification.State{}, err
	}
	var st gamification.State
	if err := json.Unmarshal(b, &st); err != nil {
		return gamification.State{}, fmt.Errorf("decode %s: %w", s.key, err)
	}
	return st, nil
}

func (s *LocalStore) Save(ctx context.Context, _ string, st gamification.State) error {
	b, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode gamification state: %w", err)
	}
	return s.set(ctx, b)
}

func (s *LocalStore) get(ctx context.Context) ([]byte, error) {
	if s.rc != nil {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		b, err := s.rc.Get(ctx, s.key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, gamification.ErrStateNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("redis get %s: %w", s.key, err)
		}
		return b, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.mem == nil {
		return nil, gamification.ErrStateNotFound
	}
	out := make([]byte, len(s.mem))
	copy(out, s.mem)
	return out, nil
}

func (s *LocalStore) set(ctx context.Context, b []byte) error {
	if s.rc != nil {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		// no TTL: guest progress lives until explicitly cleared
		if err := s.rc.Set(ctx, s.key, b, 0).Err(); err != nil {
			return fmt.Errorf("redis set %s: %w", s.key, err)
		}
		return nil
	}

	s.mu.Lock()
	s.mem = b
	s.mu.Unlock()
	return nil
}
