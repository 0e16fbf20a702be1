package httpadapter

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterDropsIdleCallers(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1)
	rl.now = func() time.Time { return now }

	for i := 0; i < 100; i++ {
		assert.True(t, rl.Allow(fmt.Sprintf("10.0.0.%d", i)))
	}
	assert.Len(t, rl.callers, 100)

	now = now.Add(callerIdleTTL + time.Second)
	assert.True(t, rl.Allow("10.0.1.1"))
	assert.Len(t, rl.callers, 1)
}

func TestRateLimiterKeepsActiveCallers(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("ana"))
	assert.False(t, rl.Allow("ana"))

	now = now.Add(callerIdleTTL - time.Second)
	assert.True(t, rl.Allow("ana"))
	assert.False(t, rl.Allow("ana"))

	now = now.Add(callerIdleTTL)
	assert.True(t, rl.Allow("bia"))
	assert.Contains(t, rl.callers, "ana")
	assert.Contains(t, rl.callers, "bia")
}
