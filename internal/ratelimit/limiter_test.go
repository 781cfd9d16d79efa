package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"grimm.is/allowsync/internal/clock"
)

func TestLimiter_Allow_Basic(t *testing.T) {
	l := NewLimiter(3, time.Minute, clock.NewMockClock(time.Unix(0, 0)))

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("okta"), "request %d", i+1)
	}
	assert.False(t, l.Allow("okta"), "4th request is over the limit")
}

func TestLimiter_Allow_DifferentKeys(t *testing.T) {
	l := NewLimiter(1, time.Minute, clock.NewMockClock(time.Unix(0, 0)))

	assert.True(t, l.Allow("okta"))
	assert.True(t, l.Allow("github"))
	assert.False(t, l.Allow("okta"))
	assert.False(t, l.Allow("github"))
}

func TestLimiter_WindowRollsOver(t *testing.T) {
	mc := clock.NewMockClock(time.Unix(0, 0))
	l := NewLimiter(2, time.Minute, mc)

	assert.True(t, l.Allow("okta"))
	assert.True(t, l.Allow("okta"))
	assert.False(t, l.Allow("okta"))

	mc.Advance(20 * time.Second)
	assert.Equal(t, 40*time.Second, l.RetryAfter("okta"))
	assert.False(t, l.Allow("okta"))

	mc.Advance(40 * time.Second)
	assert.Zero(t, l.RetryAfter("okta"))
	assert.True(t, l.Allow("okta"))
}

func TestLimiter_Reset(t *testing.T) {
	l := NewLimiter(1, time.Minute, clock.NewMockClock(time.Unix(0, 0)))

	assert.True(t, l.Allow("okta"))
	assert.False(t, l.Allow("okta"))
	l.Reset("okta")
	assert.True(t, l.Allow("okta"))
	assert.Zero(t, l.RetryAfter("unknown"))
}

func TestLimiter_ConcurrentAccess(t *testing.T) {
	l := NewLimiter(500, time.Minute, nil)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if l.Allow("okta") {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 500, allowed)
}
