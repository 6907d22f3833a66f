package infrastructure

import (
	"sync"
	"time"

	"leadflow/internal/interfaces"
)

// SendRateLimiter throttles outbound messages per lead with a token bucket,
// so a burst of drafts cannot spam one contact.
type SendRateLimiter struct {
	mu          sync.Mutex
	buckets     map[int]*tokenBucket
	rate        float64 // tokens per second
	maxTokens   float64 // burst capacity
	cleanupTick time.Duration
}

type tokenBucket struct {
	tokens     float64
	lastUpdate time.Time
}

var _ interfaces.SendGate = (*SendRateLimiter)(nil)

// NewSendRateLimiter creates a limiter allowing rate sends per second per
// lead with the given burst, and starts the stale-bucket sweeper.
func NewSendRateLimiter(rate float64, burst int) *SendRateLimiter {
	rl := &SendRateLimiter{
		buckets:     make(map[int]*tokenBucket),
		rate:        rate,
		maxTokens:   float64(burst),
		cleanupTick: 5 * time.Minute,
	}
	go rl.cleanup()
	return rl
}

// Allow reports whether a message may go to this lead now, consuming one
// token when it may.
func (rl *SendRateLimiter) Allow(leadID int) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	bucket, exists := rl.buckets[leadID]
	if !exists {
		rl.buckets[leadID] = &tokenBucket{
			tokens:     rl.maxTokens - 1,
			lastUpdate: now,
		}
		return true
	}

	// Refill for the time elapsed since the last send attempt.
	elapsed := now.Sub(bucket.lastUpdate).Seconds()
	bucket.tokens += elapsed * rl.rate
	if bucket.tokens > rl.maxTokens {
		bucket.tokens = rl.maxTokens
	}
	bucket.lastUpdate = now

	if bucket.tokens >= 1 {
		bucket.tokens--
		return true
	}
	return false
}

// cleanup drops buckets for leads that have been idle long enough to be
// full again anyway.
func (rl *SendRateLimiter) cleanup() {
	ticker := time.NewTicker(rl.cleanupTick)
	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for leadID, bucket := range rl.buckets {
			if now.Sub(bucket.lastUpdate) > 10*time.Minute {
				delete(rl.buckets, leadID)
			}
		}
		rl.mu.Unlock()
	}
}
