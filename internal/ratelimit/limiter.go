// Package ratelimit implements the keyed token-bucket rate limiter used to
// throttle inbound HTTP/WebSocket traffic on the gateway.
package ratelimit

import (
	"sync"
	"time"
)

// bucket is a single token bucket. Allow never mutates state when it
// returns false (invariant 9: attempted consumption of less than a token
// available leaves the bucket untouched).
type bucket struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	now        func() time.Time
}

func newBucket(maxTokens float64, refillRate float64, now func() time.Time) *bucket {
	if now == nil {
		now = time.Now
	}
	return &bucket{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: now(),
		now:        now,
	}
}

func (b *bucket) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refillLocked()
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (b *bucket) refillLocked() {
	now := b.now()
	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed <= 0 {
		return
	}
	b.lastRefill = now
	b.tokens += elapsed * b.refillRate
	if b.tokens > b.maxTokens {
		b.tokens = b.maxTokens
	}
}

// Limiter is a map of independently-refilling buckets keyed by an arbitrary
// string; the gateway uses the bearer token, or the remote address when no
// token is sent.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

// NewLimiter creates an empty keyed rate limiter.
func NewLimiter() *Limiter {
	return &Limiter{buckets: make(map[string]*bucket)}
}

// Allow checks whether key may consume one token from a bucket sized
// maxTokens with a per-minute refill rate of maxTokens (i.e. maxTokens/60
// tokens per second), creating the bucket on first use.
func (l *Limiter) Allow(key string, maxTokens int) bool {
	if maxTokens <= 0 {
		return true
	}
	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = newBucket(float64(maxTokens), float64(maxTokens)/60.0, l.now)
		l.buckets[key] = b
	}
	l.mu.Unlock()
	return b.allow()
}

// Reset removes a bucket, e.g. when an admin clears a block.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
}
