package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"ecochain-be/internal/utils"

	"golang.org/x/time/rate"
)

type tier struct {
	name  string
	limit rate.Limit
	burst int
}

var (
	// login, registration and payout settlement
	tierStrict = tier{"strict", rate.Limit(2), 5}
	// dashboards poll and the storefront browses
	tierFrontend = tier{"frontend", rate.Limit(20), 40}
	tierGeneral  = tier{"general", rate.Limit(10), 20}
	// other services presenting the internal secret
	tierInternal = tier{"internal", rate.Limit(100), 200}
)

const (
	visitorIdleTTL  = 3 * time.Minute
	cleanupInterval = time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps a token bucket per caller and tier.
type RateLimiter struct {
	internalKey string
	now         func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor
}

func NewRateLimiter(internalKey string) *RateLimiter {
	return &RateLimiter{
		internalKey: internalKey,
		now:         time.Now,
		visitors:    make(map[string]*visitor),
	}
}

// Run evicts idle buckets until ctx is done.
func (l *RateLimiter) Run(ctx context.Context) {
	t := time.NewTicker(cleanupInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.evictIdle()
		}
	}
}

func (l *RateLimiter) evictIdle() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, v := range l.visitors {
		if l.now().Sub(v.lastSeen) > visitorIdleTTL {
			delete(l.visitors, key)
		}
	}
}

func (l *RateLimiter) get(key string, t tier) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(t.limit, t.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = l.now()
	return v.limiter
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t := l.resolveTier(r)
		if t.name == tierInternal.name {
			r = r.WithContext(utils.WithInternalRequest(r.Context()))
		}

		key := fmt.Sprintf("%s:%s", identity(r), t.name)
		if !l.get(key, t).Allow() {
			w.Header().Set("Retry-After", "1")
			utils.WriteJSONError(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (l *RateLimiter) resolveTier(r *http.Request) tier {
	if l.internalKey != "" && r.Header.Get("X-Service-Auth") == l.internalKey {
		return tierInternal
	}
	if strings.HasPrefix(r.URL.Path, "/api/auth/") ||
		(r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/payment")) {
		return tierStrict
	}
	if r.Method == http.MethodGet &&
		(strings.HasPrefix(r.URL.Path, "/api/dashboard") || strings.HasPrefix(r.URL.Path, "/api/products")) {
		return tierFrontend
	}
	return tierGeneral
}

// identity prefers the authenticated user, then a client device id, then the
// remote address.
func identity(r *http.Request) string {
	if userID, ok := utils.GetUserIDFromContext(r.Context()); ok {
		return fmt.Sprintf("user:%d", userID)
	}
	if deviceID := r.Header.Get("X-Device-ID"); deviceID != "" {
		return "device:" + deviceID
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	return "ip:" + ip
}
