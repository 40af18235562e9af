package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/sakif/event-manager/internal/metrics"
)

// idleTTL is how long a client's limiter survives without requests.
const idleTTL = 15 * time.Minute

// RateLimit allows each client perMinute requests per minute, with bursts up
// to perMinute. Clients are keyed by r.RemoteAddr, so chi's RealIP must run
// first when the server sits behind a proxy. perMinute <= 0 disables the limit.
//
// Rejected requests get 429 with a Retry-After header.
func RateLimit(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	store := newLimiterStore(perMinute, time.Now)
	retryAfter := strconv.Itoa(int((time.Minute / time.Duration(perMinute)).Seconds()) + 1)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !store.allow(clientKey(r)) {
				metrics.RateLimited.Inc()
				w.Header().Set("Retry-After", retryAfter)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error":   "rate_limited",
					"message": "Too many requests. Please try again later.",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterStore holds one token bucket per client. Idle entries are swept
// inline, at most once per idleTTL, so no goroutine outlives the server.
type limiterStore struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	limit     rate.Limit
	burst     int
	now       func() time.Time
	lastSweep time.Time
}

func newLimiterStore(perMinute int, now func() time.Time) *limiterStore {
	return &limiterStore{
		limiters:  make(map[string]*limiterEntry),
		limit:     rate.Every(time.Minute / time.Duration(perMinute)),
		burst:     perMinute,
		now:       now,
		lastSweep: now(),
	}
}

func (s *limiterStore) allow(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) > idleTTL {
		for k, e := range s.limiters {
			if now.Sub(e.lastSeen) > idleTTL {
				delete(s.limiters, k)
			}
		}
		s.lastSweep = now
	}

	entry, ok := s.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// clientKey is the host part of RemoteAddr.
func clientKey(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
