package pace

import (
	"context"
	"testing"
	"time"
)

func TestFixedDelayWaits(t *testing.T) {
	p := NewFixedDelay(20 * time.Millisecond)

	start := time.Now()
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("Wait returned after %v, want at least 20ms", elapsed)
	}
}

func TestFixedDelayZeroIsNoop(t *testing.T) {
	p := NewFixedDelay(0)

	start := time.Now()
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Millisecond {
		t.Errorf("zero delay took %v", elapsed)
	}
}

func TestFixedDelayHonorsCancellation(t *testing.T) {
	p := NewFixedDelay(time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := p.Wait(ctx)
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("cancellation took %v", elapsed)
	}
}

func TestTokenBucketAllowsBurst(t *testing.T) {
	p := NewTokenBucket(1000, 5)

	start := time.Now()
	for i := 0; i < 5; i++ {
		if err := p.Wait(context.Background()); err != nil {
			t.Fatalf("Wait %d failed: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("burst of 5 took %v", elapsed)
	}
}
