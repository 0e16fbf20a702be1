// Package redis holds Redis-backed adapters shared across API replicas.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/PabloGalante/eco-agent/internal/domain"
)

const defaultKeyPrefix = "eco:greeted:"

// GreetGuard records greeted users with SET NX so that concurrent requests
// across replicas greet a user at most once per ttl.
type GreetGuard struct {
	rdb    goredis.UniversalClient
	ttl    time.Duration
	prefix string
}

type GreetGuardOption func(*GreetGuard)

func WithKeyPrefix(prefix string) GreetGuardOption {
	return func(g *GreetGuard) { g.prefix = prefix }
}

// NewGreetGuard wraps rdb. A ttl <= 0 keeps marks without expiry.
func NewGreetGuard(rdb goredis.UniversalClient, ttl time.Duration, opts ...GreetGuardOption) *GreetGuard {
	g := &GreetGuard{rdb: rdb, ttl: ttl, prefix: defaultKeyPrefix}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewClient dials addr and pings it.
func NewClient(ctx context.Context, addr string) (*goredis.Client, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (g *GreetGuard) key(userID domain.UserID) string {
	return g.prefix + string(userID)
}

func (g *GreetGuard) Acquire(ctx context.Context, userID domain.UserID) (bool, error) {
	if userID == "" {
		return true, nil
	}

	ttl := g.ttl
	if ttl < 0 {
		ttl = 0
	}

	ok, err := g.rdb.SetNX(ctx, g.key(userID), time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

// Reset forgets userID.
func (g *GreetGuard) Reset(ctx context.Context, userID domain.UserID) error {
	return g.rdb.Del(ctx, g.key(userID)).Err()
}
