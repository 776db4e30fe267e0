package llm

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// rateLimiter implements a simple token bucket rate limiter.
type rateLimiter struct {
	lastRefill time.Time
	stopCh     chan struct{}
	tokens     int
	capacity   int
	refillRate int
	mu         sync.Mutex
}

// newRateLimiter creates a new rate limiter with the specified requests per minute.
func newRateLimiter(requestsPerMinute int) *rateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}

	rl := &rateLimiter{
		tokens:     requestsPerMinute,
		capacity:   requestsPerMinute,
		refillRate: requestsPerMinute,
		lastRefill: time.Now(),
		stopCh:     make(chan struct{}),
	}

	go rl.refill()

	return rl
}

// wait blocks until a token is available or the context is canceled.
func (rl *rateLimiter) wait(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if rl.tryAcquire() {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("rate limiter canceled: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// tryAcquire attempts to acquire a token without blocking.
func (rl *rateLimiter) tryAcquire() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.tokens > 0 {
		rl.tokens--
		return true
	}
	return false
}

// refill periodically adds tokens to the bucket.
func (rl *rateLimiter) refill() {
	ticker := time.NewTicker(time.Minute / time.Duration(rl.refillRate))
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			rl.mu.Lock()
			if rl.tokens < rl.capacity {
				rl.tokens++
			}
			rl.mu.Unlock()
		}
	}
}

// close stops the refill goroutine.
func (rl *rateLimiter) close() {
	close(rl.stopCh)
}

// throttledClient decorates a Client with a rate limiter so every provider
// shares the same throttling behavior.
type throttledClient struct {
	inner   Client
	limiter *rateLimiter
}

func newThrottledClient(inner Client, requestsPerMinute int) Client {
	return &throttledClient{
		inner:   inner,
		limiter: newRateLimiter(requestsPerMinute),
	}
}

// Invoke waits for rate limiter clearance, then delegates. It still performs
// exactly one provider call; throttling delays, never retries.
func (t *throttledClient) Invoke(ctx context.Context, instruction, input string) (Extraction, error) {
	if err := t.limiter.wait(ctx); err != nil {
		return Extraction{}, err
	}
	return t.inner.Invoke(ctx, instruction, input)
}

// Close stops the rate limiter and closes the wrapped client.
func (t *throttledClient) Close() {
	t.limiter.close()
	t.inner.Close()
}
