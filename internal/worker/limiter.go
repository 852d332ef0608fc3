package worker

import (
	"context"
	"path/filepath"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter throttles file reads per source directory, so a batch touching a
// slow network mount does not hammer it
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a new rate limiter. readsPerSecond <= 0 leaves
// directories without an override unthrottled.
func NewLimiter(readsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  limitOf(readsPerSecond),
		defaultBurst: burst,
	}
}

// Wait blocks until a read of path is allowed
func (l *Limiter) Wait(ctx context.Context, path string) error {
	return l.getLimiter(bucketKey(path)).Wait(ctx)
}

func (l *Limiter) getLimiter(dir string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[dir]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[dir]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[dir] = limiter

	return limiter
}

// SetDirectoryRate sets a custom rate limit for files directly inside dir
func (l *Limiter) SetDirectoryRate(dir string, readsPerSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if burst <= 0 {
		burst = l.defaultBurst
	}

	l.limiters[filepath.Clean(dir)] = rate.NewLimiter(limitOf(readsPerSecond), burst)
}

func limitOf(readsPerSecond float64) rate.Limit {
	if readsPerSecond <= 0 {
		return rate.Inf
	}
	return rate.Limit(readsPerSecond)
}

// bucketKey groups paths by their containing directory
func bucketKey(path string) string {
	return filepath.Dir(filepath.Clean(path))
}
