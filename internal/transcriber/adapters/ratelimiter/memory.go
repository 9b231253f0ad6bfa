package ratelimiter

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/izzddalfk/zhuanxie/internal/transcriber/core"
)

// RateLimiter implements token bucket rate limiting per client key
type RateLimiter struct {
	buckets map[string]*tokenBucket
	mutex   sync.Mutex
	logger  *slog.Logger
	config  RateLimitConfig
	now     core.Clock

	stop     chan struct{}
	stopOnce sync.Once
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int           // tokens refilled per minute
	BurstSize         int           // bucket capacity
	IdleTTL           time.Duration // buckets unused for this long are dropped
	CleanupInterval   time.Duration
}

// tokenBucket represents a token bucket for a single client
type tokenBucket struct {
	tokens       float64
	lastRefill   time.Time
	lastAccess   time.Time
	blockedCount int
}

// NewRateLimiter creates a rate limiter with a burst of half the per minute
// rate and starts the bucket cleanup loop
func NewRateLimiter(requestsPerMinute int, logger *slog.Logger) *RateLimiter {
	return NewRateLimiterWithConfig(RateLimitConfig{
		RequestsPerMinute: requestsPerMinute,
		BurstSize:         requestsPerMinute / 2,
		IdleTTL:           time.Hour,
		CleanupInterval:   5 * time.Minute,
	}, logger, time.Now)
}

// NewRateLimiterWithConfig creates a rate limiter with an explicit
// configuration and clock
func NewRateLimiterWithConfig(config RateLimitConfig, logger *slog.Logger, now core.Clock) *RateLimiter {
	if config.RequestsPerMinute < 1 {
		config.RequestsPerMinute = 1
	}
	if config.BurstSize < 1 {
		config.BurstSize = 1
	}
	if now == nil {
		now = time.Now
	}

	rl := &RateLimiter{
		buckets: make(map[string]*tokenBucket),
		logger:  logger,
		config:  config,
		now:     now,
		stop:    make(chan struct{}),
	}

	if config.CleanupInterval > 0 {
		go rl.cleanupRoutine()
	}

	logger.InfoContext(context.Background(), "Rate limiter initialized",
		"requests_per_minute", config.RequestsPerMinute,
		"burst_size", config.BurstSize,
	)

	return rl
}

// Allow consumes a token for key and returns core.ErrRateLimited when the
// bucket is empty
func (rl *RateLimiter) Allow(ctx context.Context, key string) error {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	bucket := rl.getBucket(key, now)
	rl.refillBucket(bucket, now)
	bucket.lastAccess = now

	if bucket.tokens < 1 {
		bucket.blockedCount++
		rl.logger.WarnContext(ctx, "Request blocked by rate limiter",
			"client", key,
			"blocked_count", bucket.blockedCount,
		)
		return core.ErrRateLimited
	}

	bucket.tokens--
	return nil
}

// Close stops the cleanup loop
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// getBucket gets or creates the bucket of a client
func (rl *RateLimiter) getBucket(key string, now time.Time) *tokenBucket {
	bucket, exists := rl.buckets[key]
	if !exists {
		bucket = &tokenBucket{
			tokens:     float64(rl.config.BurstSize),
			lastRefill: now,
			lastAccess: now,
		}
		rl.buckets[key] = bucket
	}
	return bucket
}

// refillBucket adds the tokens earned since the last refill
func (rl *RateLimiter) refillBucket(bucket *tokenBucket, now time.Time) {
	elapsed := now.Sub(bucket.lastRefill)
	if elapsed <= 0 {
		return
	}

	bucket.tokens = min(
		bucket.tokens+float64(rl.config.RequestsPerMinute)*elapsed.Minutes(),
		float64(rl.config.BurstSize),
	)
	bucket.lastRefill = now
}

func (rl *RateLimiter) cleanupRoutine() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

// cleanup removes idle buckets
func (rl *RateLimiter) cleanup() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	cutoff := rl.now().Add(-rl.config.IdleTTL)
	for key, bucket := range rl.buckets {
		if bucket.lastAccess.Before(cutoff) {
			delete(rl.buckets, key)
		}
	}
}
