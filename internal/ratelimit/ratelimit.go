// Package ratelimit bounds request volume per client IP per route group
// using fixed windows: the first request for a key opens a window, requests
// inside it increment a counter, and the counter resets once the window
// passes. Each configured instance owns isolated state, so exhausting the
// auth limiter never affects the comment limiter.
package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/FiveXSeven/synergies/internal/cache"
	apierrors "github.com/FiveXSeven/synergies/internal/errors"
)

type window struct {
	count   int
	resetAt time.Time
}

// MemoryStore is an in-process fixed-window counter implementing echo's
// middleware.RateLimiterStore. Counters are mutex-guarded; a periodic sweep
// evicts expired windows to bound memory. Counters are per-process: a
// multi-instance deployment needs RedisStore instead.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window
	window  time.Duration
	max     int
	done    chan struct{}
}

var _ echomw.RateLimiterStore = (*MemoryStore)(nil)

// NewMemoryStore creates a store allowing max requests per key per window
// and starts its sweep goroutine.
func NewMemoryStore(windowDur time.Duration, max int) *MemoryStore {
	s := &MemoryStore{
		windows: make(map[string]*window),
		window:  windowDur,
		max:     max,
		done:    make(chan struct{}),
	}
	go s.sweep()
	return s
}

// Allow reports whether the identifier may proceed, counting the request.
func (s *MemoryStore) Allow(identifier string) (bool, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[identifier]
	if !ok || now.After(w.resetAt) {
		s.windows[identifier] = &window{count: 1, resetAt: now.Add(s.window)}
		return true, nil
	}
	w.count++
	return w.count <= s.max, nil
}

// Stop terminates the sweep goroutine.
func (s *MemoryStore) Stop() {
	close(s.done)
}

func (s *MemoryStore) sweep() {
	ticker := time.NewTicker(s.window)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for key, w := range s.windows {
				if now.After(w.resetAt) {
					delete(s.windows, key)
				}
			}
			s.mu.Unlock()
		}
	}
}

// RedisStore counts fixed windows in redis so multiple instances share one
// counter. Window bucketing uses INCR on a time-bucketed key with a TTL.
// Redis being unreachable fails open: limiting is abuse mitigation, not a
// correctness requirement.
type RedisStore struct {
	cache  *cache.Client
	prefix string
	window time.Duration
	max    int
}

var _ echomw.RateLimiterStore = (*RedisStore)(nil)

// NewRedisStore creates a shared-counter store under the given key prefix.
func NewRedisStore(c *cache.Client, prefix string, windowDur time.Duration, max int) *RedisStore {
	return &RedisStore{cache: c, prefix: prefix, window: windowDur, max: max}
}

// Allow reports whether the identifier may proceed, counting the request.
func (s *RedisStore) Allow(identifier string) (bool, error) {
	ctx := context.Background()
	bucket := time.Now().UnixMilli() / s.window.Milliseconds()
	key := fmt.Sprintf("ratelimit:%s:%s:%d", s.prefix, identifier, bucket)

	n, err := s.cache.Incr(ctx, key)
	if err != nil {
		return true, nil
	}
	if n == 1 {
		_ = s.cache.Expire(ctx, key, s.window)
	}
	return n <= int64(s.max), nil
}

// Middleware wraps a store as echo middleware keyed by client IP. Rejections
// answer 429 with a Retry-After hint and never touch the handler.
func Middleware(store echomw.RateLimiterStore, windowDur time.Duration) echo.MiddlewareFunc {
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusInternalServerError, apierrors.ErrorResponse{
				Error: "internal server error",
			})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			c.Response().Header().Set("Retry-After", strconv.Itoa(int(windowDur.Seconds())))
			return echo.NewHTTPError(http.StatusTooManyRequests, apierrors.ErrorResponse{
				Error: "too many requests, retry later",
			})
		},
	})
}
