package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"glow/pkg/utils"
)

const (
	VisitorTTL      = 5 * time.Minute
	CleanupInterval = 3 * time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter is a per-IP token bucket. The global limiter, the RSVP limiter
// and the login limiter are separate instances.
type Limiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	message  string
	code     string
}

// NewLimiter allows requests per window with the given burst.
func NewLimiter(requests int, window time.Duration, burst int) *Limiter {
	if requests <= 0 {
		requests = 20
	}
	if window <= 0 {
		window = time.Second
	}
	if burst <= 0 {
		burst = requests
	}
	return &Limiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(requests) / window.Seconds()),
		burst:    burst,
		code:     utils.ErrRequestRateLimitExceeded,
		message:  "Bạn thao tác quá nhanh, vui lòng thử lại sau giây lát.",
	}
}

// WithError changes the code and message of the 429 reply.
func (l *Limiter) WithError(code, message string) *Limiter {
	l.code, l.message = code, message
	return l
}

func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter.Allow()
}

// Cleanup drops visitors idle for VisitorTTL until ctx ends.
func (l *Limiter) Cleanup(ctx context.Context) {
	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.sweep(time.Now())
		}
	}
}

func (l *Limiter) sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for ip, v := range l.visitors {
		if now.Sub(v.lastSeen) > VisitorTTL {
			delete(l.visitors, ip)
			n++
		}
	}
	return n
}

func (l *Limiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(utils.GetRealIP(r)) {
			w.Header().Set("Retry-After", "1")
			utils.WriteError(w, http.StatusTooManyRequests, l.code, l.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// HandlerFunc wraps a single route.
func (l *Limiter) HandlerFunc(fn http.HandlerFunc) http.Handler {
	return l.Handler(fn)
}
