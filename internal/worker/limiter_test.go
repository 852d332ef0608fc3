package worker

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "rtl/fifo.sv"); err != nil {
		t.Errorf("wait failed: %v", err)
	}

	// Different directory has its own bucket
	if err := limiter.Wait(ctx, "tb/fifo_tb.sv"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func shortWait(l *Limiter, path string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	return l.Wait(ctx, path)
}

func TestLimiter_RateLimit(t *testing.T) {
	limiter := NewLimiter(0.01, 1)

	if err := shortWait(limiter, "rtl/a.sv"); err != nil {
		t.Fatalf("first read should pass: %v", err)
	}

	// Same directory shares the exhausted bucket
	if err := shortWait(limiter, "rtl/b.sv"); err == nil {
		t.Error("expected wait to fail once the context expires")
	}

	if err := shortWait(limiter, "tb/a.sv"); err != nil {
		t.Errorf("expected read for other directory to pass: %v", err)
	}
}

func TestLimiter_Unthrottled(t *testing.T) {
	limiter := NewLimiter(0, 1)

	for i := 0; i < 50; i++ {
		if err := shortWait(limiter, "rtl/a.sv"); err != nil {
			t.Fatalf("read %d should not be throttled: %v", i, err)
		}
	}
}

func TestLimiter_SetDirectoryRate(t *testing.T) {
	limiter := NewLimiter(0, 10)
	limiter.SetDirectoryRate("/mnt/nfs/rtl/", 0.01, 1)

	if err := shortWait(limiter, "/mnt/nfs/rtl/a.sv"); err != nil {
		t.Errorf("first read should pass: %v", err)
	}
	if err := shortWait(limiter, "/mnt/nfs/rtl/b.sv"); err == nil {
		t.Errorf("second read should be throttled")
	}
	for i := 0; i < 20; i++ {
		if err := shortWait(limiter, "/local/rtl/a.sv"); err != nil {
			t.Fatalf("other directory should not be throttled: %v", err)
		}
	}
}

func TestBucketKey(t *testing.T) {
	tests := map[string]string{
		"rtl/fifo.sv":        filepath.Join("rtl"),
		"rtl/../rtl/fifo.sv": filepath.Join("rtl"),
		"fifo.sv":            ".",
		"/abs/dir/x.sv":      filepath.Join("/abs", "dir"),
	}

	for in, want := range tests {
		if got := bucketKey(in); got != want {
			t.Errorf("bucketKey(%q) = %q, want %q", in, got, want)
		}
	}
}
