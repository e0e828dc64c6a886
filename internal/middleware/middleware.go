package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/olyamironova/artist-exchange/internal/logger"
)

const (
	OwnerHeader     = "X-Owner-ID"
	RequestIDHeader = "X-Request-ID"
)

// RateLimiter allows one request per limit per caller. Callers are told
// apart by owner header, falling back to the client address.
type RateLimiter struct {
	clients map[string]time.Time
	mu      sync.Mutex
	limit   time.Duration
	now     func() time.Time
}

func NewRateLimiter(limit time.Duration) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]time.Time),
		limit:   limit,
		now:     time.Now,
	}
}

// Allow records a request from key and reports whether it is within limit.
func (r *RateLimiter) Allow(key string) bool {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	last, exists := r.clients[key]
	if exists && now.Sub(last) < r.limit {
		return false
	}
	r.clients[key] = now
	if len(r.clients) > 10_000 {
		for k, t := range r.clients {
			if now.Sub(t) >= r.limit {
				delete(r.clients, k)
			}
		}
	}
	return true
}

func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if r.limit <= 0 {
			c.Next()
			return
		}
		key := c.GetHeader(OwnerHeader)
		if key == "" {
			key = c.ClientIP()
		}
		if !r.Allow(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

// RequestID reuses the caller's X-Request-ID or generates one, and puts it on
// the request context for the logger.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// AccessLog writes one line per request.
func AccessLog(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := []logger.Field{
			logger.NewField("method", c.Request.Method),
			logger.NewField("path", c.FullPath()),
			logger.NewField("status", c.Writer.Status()),
			logger.NewField("latency", time.Since(start).String()),
			logger.NewField("client_ip", c.ClientIP()),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.WarnContext(c.Request.Context(), "request failed", fields...)
			return
		}
		log.InfoContext(c.Request.Context(), "request", fields...)
	}
}
