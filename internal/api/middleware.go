package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/venturemind/venturemind-backend/internal/account"
	"github.com/venturemind/venturemind-backend/internal/models"
)

const userKey = "venturemind.user"

// RequestLoggingMiddleware logs method, path, status and latency. Bodies are
// never logged since they carry passwords.
func RequestLoggingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP())
	}
}

// CORSMiddleware allows any origin. Auth travels in the Authorization
// header, so cookies are never needed cross-origin.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// optionalUser attaches the caller when a valid bearer token is present.
// Bad or missing tokens leave the request anonymous.
func (s *Server) optionalUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := account.BearerToken(c.GetHeader("Authorization")); ok {
			if u, err := s.accounts.Authenticate(c.Request.Context(), token); err == nil {
				c.Set(userKey, u)
			} else {
				s.logger.Debug("ignoring bearer token", "error", err)
			}
		}
		c.Next()
	}
}

func (s *Server) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := account.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			s.abortWithError(c, account.ErrUnauthorized)
			return
		}
		u, err := s.accounts.Authenticate(c.Request.Context(), token)
		if err != nil {
			s.abortWithError(c, err)
			return
		}
		c.Set(userKey, u)
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}

const limiterTableSize = 4096

// clientLimiter keeps one token bucket per caller, keyed by user id when
// authenticated and by client IP otherwise.
type clientLimiter struct {
	mu       sync.Mutex
	limiters *lru.Cache[string, *rate.Limiter]
	limit    rate.Limit
	burst    int
}

func newClientLimiter(cfg RateLimit) *clientLimiter {
	if cfg.RPS <= 0 {
		return nil
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	cache, err := lru.New[string, *rate.Limiter](limiterTableSize)
	if err != nil {
		// Only reachable with a non-positive size.
		panic(err)
	}
	return &clientLimiter{limiters: cache, limit: rate.Limit(cfg.RPS), burst: burst}
}

func (l *clientLimiter) allow(key string) bool {
	l.mu.Lock()
	lim, ok := l.limiters.Get(key)
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters.Add(key, lim)
	}
	l.mu.Unlock()
	return lim.Allow()
}

func (l *clientLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil {
			c.Next()
			return
		}
		key := "ip:" + c.ClientIP()
		if u := currentUser(c); u != nil {
			key = "user:" + u.ID
		}
		if !l.allow(key) {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"detail": "Too many requests, slow down."})
			return
		}
		c.Next()
	}
}
