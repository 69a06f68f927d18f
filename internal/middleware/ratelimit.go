package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Limiter decides whether key may make another request in the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type visitor struct {
	count    int
	lastSeen time.Time
}

// MemoryLimiter is a per-process fixed window limiter.
type MemoryLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    int
	window   time.Duration
	stop     chan struct{}
	now      func() time.Time
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	rl := &MemoryLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   window,
		stop:     make(chan struct{}),
		now:      time.Now,
	}

	// Cleanup goroutine
	go func() {
		ticker := time.NewTicker(window)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.cleanup()
			case <-rl.stop:
				return
			}
		}
	}()

	return rl
}

func (rl *MemoryLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, v := range rl.visitors {
		if rl.now().Sub(v.lastSeen) > rl.window {
			delete(rl.visitors, ip)
		}
	}
}

func (rl *MemoryLimiter) Stop() {
	close(rl.stop)
}

func (rl *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, exists := rl.visitors[key]
	if !exists || now.Sub(v.lastSeen) > rl.window {
		rl.visitors[key] = &visitor{count: 1, lastSeen: now}
		return true, nil
	}

	v.count++
	v.lastSeen = now
	return v.count <= rl.limit, nil
}

// RedisLimiter shares a fixed window across relay instances.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: "tonecheck:ratelimit:",
	}
}

func (rl *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := time.Now().UnixNano() / int64(rl.window)
	k := fmt.Sprintf("%s%s:%d", rl.prefix, key, bucket)

	pipe := rl.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, rl.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit counter: %w", err)
	}

	return incr.Val() <= int64(rl.limit), nil
}

// RateLimit rejects callers over the limiter's budget with 429. Preflight
// requests are not counted. A failing limiter lets the request through.
func RateLimit(limiter Limiter, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			key := clientKey(r)
			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				log.WithError(err).Warn("Rate limiter unavailable, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				log.WithField("client", key).Info("Rate limit exceeded")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error":   "Too many requests",
					"details": "Too many requests. Please try again later.",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
