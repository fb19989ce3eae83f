package api

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/juju/ratelimit"
)

// Per-client token-bucket rate limiting. Each client IP gets a bucket that
// refills at fixed rate; endpoint costs scale with query weight.

const (
	bucketRate     = 5   // tokens per second
	bucketCapacity = 300 // burst headroom
)

type rateLimiter struct {
	clients map[string]*ratelimit.Bucket
	mu      sync.RWMutex
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{clients: make(map[string]*ratelimit.Bucket)}
	go rl.cleanupLoop()
	return rl
}

func (rl *rateLimiter) getBucket(clientIP string) *ratelimit.Bucket {
	rl.mu.RLock()
	bucket, exists := rl.clients[clientIP]
	rl.mu.RUnlock()

	if !exists {
		rl.mu.Lock()
		if bucket, exists = rl.clients[clientIP]; !exists {
			bucket = ratelimit.NewBucketWithRate(bucketRate, bucketCapacity)
			rl.clients[clientIP] = bucket
		}
		rl.mu.Unlock()
	}

	return bucket
}

// cleanupLoop drops buckets that refilled completely, i.e. idle clients.
func (rl *rateLimiter) cleanupLoop() {
	ticker := time.NewTicker(30 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		rl.mu.Lock()
		for ip, bucket := range rl.clients {
			if bucket.Available() == bucket.Capacity() {
				delete(rl.clients, ip)
			}
		}
		rl.mu.Unlock()
	}
}

func tokenCost(r *http.Request) int64 {
	path := r.URL.Path
	switch {
	case path == "/health" || path == "/metrics":
		return 0
	case path == "/api/combinations":
		return 10
	case strings.HasPrefix(path, "/api/lookups/"):
		return 5
	case path == "/api/ingest":
		return 50
	}
	return 5
}

// middleware enforces the per-IP token bucket and sets the usual
// X-RateLimit headers.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bucket := rl.getBucket(r.RemoteAddr)
		cost := tokenCost(r)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(bucketCapacity))

		if bucket.TakeAvailable(cost) < cost {
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(bucket.Available(), 10))
		next.ServeHTTP(w, r)
	})
}
