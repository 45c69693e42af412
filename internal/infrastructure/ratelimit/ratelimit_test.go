package ratelimit

import (
	"testing"
	"time"
)

func TestMemoryStoreAllowsWithinLimit(t *testing.T) {
	store := NewMemoryStore(5)
	now := time.Now()

	for i := 0; i < 5; i++ {
		allowed, _ := store.Allow("client-a", now)
		if !allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	allowed, retryAfter := store.Allow("client-a", now)
	if allowed {
		t.Fatal("sixth request within the same instant should be rejected")
	}
	if retryAfter <= 0 {
		t.Fatalf("expected positive retry-after, got %v", retryAfter)
	}
}

func TestMemoryStoreKeysAreIndependent(t *testing.T) {
	store := NewMemoryStore(1)
	now := time.Now()

	if allowed, _ := store.Allow("client-a", now); !allowed {
		t.Fatal("first request for client-a should be allowed")
	}
	if allowed, _ := store.Allow("client-b", now); !allowed {
		t.Fatal("first request for client-b should be allowed")
	}
	if allowed, _ := store.Allow("client-a", now); allowed {
		t.Fatal("second request for client-a should be rejected")
	}
}

func TestMemoryStoreRefillsOverTime(t *testing.T) {
	store := NewMemoryStore(60) // one token per second
	now := time.Now()

	for i := 0; i < 60; i++ {
		store.Allow("client-a", now)
	}
	if allowed, _ := store.Allow("client-a", now); allowed {
		t.Fatal("bucket should be drained")
	}

	later := now.Add(2 * time.Second)
	if allowed, _ := store.Allow("client-a", later); !allowed {
		t.Fatal("bucket should have refilled after two seconds")
	}
}
