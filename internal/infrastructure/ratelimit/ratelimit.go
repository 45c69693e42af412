// Package ratelimit provides per-key request throttling. The Store interface
// keeps the accounting swappable; the in-memory token bucket suits a single
// instance, a shared store can back multiple replicas.
package ratelimit

import (
	"sync"
	"time"
)

// Store decides whether a request identified by key may proceed. When it may
// not, retryAfter suggests how long the caller should wait.
type Store interface {
	Allow(key string, now time.Time) (allowed bool, retryAfter time.Duration)
}

type bucket struct {
	tokens     float64
	lastRefill time.Time
}

// MemoryStore is a token bucket per key. Safe for concurrent use.
type MemoryStore struct {
	limitPerMinute float64
	ratePerSecond  float64

	mu      sync.Mutex
	buckets map[string]*bucket
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(limitPerMinute float64) *MemoryStore {
	return &MemoryStore{
		limitPerMinute: limitPerMinute,
		ratePerSecond:  limitPerMinute / 60.0,
		buckets:        make(map[string]*bucket),
	}
}

// Allow implements Store.
func (s *MemoryStore) Allow(key string, now time.Time) (bool, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{tokens: s.limitPerMinute, lastRefill: now}
		s.buckets[key] = b
	}

	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens = min(s.limitPerMinute, b.tokens+elapsed*s.ratePerSecond)
	b.lastRefill = now

	if b.tokens < 1 {
		wait := time.Duration((1 - b.tokens) / s.ratePerSecond * float64(time.Second))
		return false, wait
	}
	b.tokens -= 1
	return true, 0
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
