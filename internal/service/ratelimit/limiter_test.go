package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestAllowPerKey(t *testing.T) {
	l := New(0.001, 2)
	if !l.Allow("a") || !l.Allow("a") {
		t.Fatalf("burst of 2 should be allowed")
	}
	if l.Allow("a") {
		t.Fatalf("third call should be throttled")
	}
	if !l.Allow("b") {
		t.Fatalf("keys must not share buckets")
	}
}

func TestWaitHonoursContext(t *testing.T) {
	l := New(0.001, 1)
	_ = l.Allow("a")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx, "a"); err == nil {
		t.Fatalf("expected wait to fail on an exhausted bucket")
	}
}
