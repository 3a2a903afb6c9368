package rest

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/orgdrive/internal/common"
	"github.com/dmitrijs2005/orgdrive/internal/logging"
	"github.com/dmitrijs2005/orgdrive/internal/server/auth"
	"github.com/dmitrijs2005/orgdrive/internal/server/metrics"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const identityKey = "identity"

// identityFrom returns the identity resolved by the identity middleware,
// or the anonymous identity.
func identityFrom(c *gin.Context) auth.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(auth.Identity); ok {
			return id
		}
	}
	return auth.Anonymous()
}

func requestLogger(l logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		l.Info(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"ip", c.ClientIP(),
		)
	}
}

func instrument(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

// ipLimiter keeps one token bucket per client IP. Buckets idle for longer
// than idleTTL are dropped on the next sweep.
type ipLimiter struct {
	mu        sync.Mutex
	clients   map[string]*ipClient
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
}

type ipClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPLimiter(rps float64, burst int) *ipLimiter {
	return &ipLimiter{
		clients:   make(map[string]*ipClient),
		limit:     rate.Limit(rps),
		burst:     burst,
		idleTTL:   3 * time.Minute,
		lastSweep: time.Now(),
	}
}

func (l *ipLimiter) allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > l.idleTTL {
		for k, c := range l.clients {
			if now.Sub(c.lastSeen) > l.idleTTL {
				delete(l.clients, k)
			}
		}
		l.lastSweep = now
	}

	c, ok := l.clients[ip]
	if !ok {
		c = &ipClient{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = c
	}
	c.lastSeen = now

	return c.limiter.AllowN(now, 1)
}

func rateLimit(l *ipLimiter, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.allow(c.ClientIP(), time.Now()) {
			m.RateLimited("ip")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{Error: common.ErrRateLimited.Error()})
			return
		}
		c.Next()
	}
}

// authenticate resolves the bearer token into an identity. A missing or
// invalid token leaves the request anonymous; each operation decides what
// an anonymous caller may do. Authenticated callers are synced to the
// users table before the handler runs.
func (h *handlers) authenticate(c *gin.Context) {
	id := auth.Anonymous()

	header := c.GetHeader(common.AuthorizationHeaderName)
	if token, ok := strings.CutPrefix(header, common.BearerPrefix); ok && token != "" {
		parsed, err := h.parseToken(token)
		if err != nil {
			h.logger.Debug(c.Request.Context(), "token rejected", "error", err)
		} else {
			id = parsed
		}
	}

	if id.Authenticated {
		if _, err := h.users.EnsureUser(c.Request.Context(), id); err != nil {
			h.fail(c, err)
			return
		}
	}

	c.Set(identityKey, id)
	c.Next()
}
