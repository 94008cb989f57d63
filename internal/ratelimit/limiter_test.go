package ratelimit

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(window time.Duration, max int) (*Limiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return New(window, max, WithClock(clock.Now)), clock
}

func TestLimiterBlocksAfterMaxAttempts(t *testing.T) {
	limiter, _ := newTestLimiter(300*time.Second, 10)

	for i := 0; i < 9; i++ {
		limiter.RecordAttempt("10.0.0.1")
	}
	if limiter.IsLimited("10.0.0.1") {
		t.Fatal("limited before reaching max attempts")
	}

	limiter.RecordAttempt("10.0.0.1")
	if !limiter.IsLimited("10.0.0.1") {
		t.Fatal("expected limit after max attempts")
	}
}

func TestLimiterExpiresOldAttempts(t *testing.T) {
	limiter, clock := newTestLimiter(300*time.Second, 10)

	for i := 0; i < 10; i++ {
		limiter.RecordAttempt("10.0.0.1")
	}
	if !limiter.IsLimited("10.0.0.1") {
		t.Fatal("expected limit")
	}

	clock.Advance(301 * time.Second)
	if limiter.IsLimited("10.0.0.1") {
		t.Fatal("expected limit to expire with the window")
	}
}

func TestLimiterRetryAfterCountsDown(t *testing.T) {
	limiter, clock := newTestLimiter(300*time.Second, 10)

	limiter.RecordAttempt("10.0.0.1")
	if got := limiter.RetryAfter("10.0.0.1"); got != 300 {
		t.Fatalf("expected 300s until reset, got %d", got)
	}

	clock.Advance(100 * time.Second)
	if got := limiter.RetryAfter("10.0.0.1"); got != 200 {
		t.Fatalf("expected 200s until reset, got %d", got)
	}

	clock.Advance(199 * time.Second)
	if got := limiter.RetryAfter("10.0.0.1"); got != 1 {
		t.Fatalf("expected 1s until reset, got %d", got)
	}

	clock.Advance(time.Second)
	if got := limiter.RetryAfter("10.0.0.1"); got != 0 {
		t.Fatalf("expected reset, got %d", got)
	}
}

func TestLimiterRetryAfterRoundsUp(t *testing.T) {
	limiter, clock := newTestLimiter(300*time.Second, 10)

	limiter.RecordAttempt("10.0.0.1")
	clock.Advance(100*time.Second + 500*time.Millisecond)
	if got := limiter.RetryAfter("10.0.0.1"); got != 200 {
		t.Fatalf("expected 199.5s rounded up to 200, got %d", got)
	}
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter(300*time.Second, 2)

	limiter.RecordAttempt("10.0.0.1")
	limiter.RecordAttempt("10.0.0.1")
	if !limiter.IsLimited("10.0.0.1") {
		t.Fatal("expected first key limited")
	}
	if limiter.IsLimited("10.0.0.2") {
		t.Fatal("second key should be unaffected")
	}
}

func TestLimiterEvictsIdleKeys(t *testing.T) {
	limiter, clock := newTestLimiter(10*time.Second, 3)

	limiter.RecordAttempt("once")
	if limiter.Len() != 1 {
		t.Fatalf("expected 1 tracked key, got %d", limiter.Len())
	}

	clock.Advance(11 * time.Second)
	limiter.IsLimited("once")
	if limiter.Len() != 0 {
		t.Fatalf("expected idle key evicted, got %d tracked", limiter.Len())
	}
}

func TestLimiterConcurrentRecord(t *testing.T) {
	limiter, _ := newTestLimiter(time.Minute, 1000)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				limiter.RecordAttempt("shared")
			}
		}()
	}
	wg.Wait()

	if !limiter.IsLimited("shared") {
		t.Fatal("expected 1000 recorded attempts to hit the limit")
	}
}
