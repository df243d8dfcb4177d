package llm

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiterAllowsBudget(t *testing.T) {
	rl := newRateLimiter(5)
	defer rl.Close()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := rl.wait(ctx); err != nil {
			t.Fatalf("wait() call %d error = %v", i, err)
		}
	}
}

func TestRateLimiterBlocksWhenExhausted(t *testing.T) {
	rl := newRateLimiter(1)
	defer rl.Close()

	if err := rl.wait(context.Background()); err != nil {
		t.Fatalf("first wait() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	err := rl.wait(ctx)
	if err == nil {
		t.Fatal("wait() succeeded with an empty bucket, want context error")
	}
}

func TestRateLimiterDefaultsOnInvalidRate(t *testing.T) {
	rl := newRateLimiter(0)
	defer rl.Close()

	if rl.capacity != 60 {
		t.Errorf("capacity = %d, want 60", rl.capacity)
	}
}

func TestRateLimiterCloseIsIdempotent(t *testing.T) {
	rl := newRateLimiter(10)
	rl.Close()
	rl.Close()
}
