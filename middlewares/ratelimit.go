package middlewares

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"food-storefront/metrics"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per client IP.
type RateLimiter struct {
	rps   rate.Limit
	burst int

	mu          sync.Mutex
	perIP       map[string]*ipLimiter
	lastCleanup time.Time
	now         func() time.Time
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		rps:         rate.Limit(rps),
		burst:       burst,
		perIP:       make(map[string]*ipLimiter),
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

// Allow reports whether ip may proceed and, if not, how long until it may.
func (l *RateLimiter) Allow(ip string) (bool, time.Duration) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.perIP[ip]
	if !ok {
		e = &ipLimiter{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.perIP[ip] = e
	}
	e.lastSeen = now
	l.maybeCleanup(now)

	r := e.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, time.Second
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// maybeCleanup drops limiters of clients that went quiet. Callers hold mu.
func (l *RateLimiter) maybeCleanup(now time.Time) {
	if now.Sub(l.lastCleanup) < limiterIdleTTL {
		return
	}
	for ip, e := range l.perIP {
		if now.Sub(e.lastSeen) > limiterIdleTTL {
			delete(l.perIP, ip)
		}
	}
	l.lastCleanup = now
}

// Middleware rejects over-limit clients with 429 and a Retry-After header.
// A nil limiter or a non-positive rate disables limiting.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || l.rps <= 0 {
			c.Next()
			return
		}
		ok, wait := l.Allow(c.ClientIP())
		if ok {
			c.Next()
			return
		}
		metrics.RecordRateLimited()
		secs := int(math.Ceil(wait.Seconds()))
		if secs < 1 {
			secs = 1
		}
		c.Header("Retry-After", strconv.Itoa(secs))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please try again later."})
	}
}
