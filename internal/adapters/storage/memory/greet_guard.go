package memory

import (
	"context"
	"sync"
	"time"

	"github.com/PabloGalante/eco-agent/internal/domain"
)

// GreetGuard is an in-process domain.GreetGuard. Marks expire after ttl;
// a ttl <= 0 keeps them for the lifetime of the guard.
type GreetGuard struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	marked map[domain.UserID]time.Time
}

func NewGreetGuard(ttl time.Duration) *GreetGuard {
	return &GreetGuard{
		ttl:    ttl,
		now:    time.Now,
		marked: make(map[domain.UserID]time.Time),
	}
}

// Acquire checks and marks userID under one lock. Anonymous callers (empty
// userID) are never tracked.
func (g *GreetGuard) Acquire(_ context.Context, userID domain.UserID) (bool, error) {
	if userID == "" {
		return true, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if at, ok := g.marked[userID]; ok && (g.ttl <= 0 || now.Sub(at) < g.ttl) {
		return false, nil
	}

	g.marked[userID] = now
	return true, nil
}

// Reset forgets userID, e.g. when its session ends.
func (g *GreetGuard) Reset(userID domain.UserID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.marked, userID)
}
