package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/pkg/logger"
	"github.com/samber/lo"
	"golang.org/x/time/rate"
)

type Middleware struct {
	logger         logger.Logger
	rateLimiter    *rate.Limiter
	allowedOrigins []string
}

// NewMiddleware allows rateLimit requests per rateWindow, refilled evenly
// across the window, with bursts of up to rateLimit.
func NewMiddleware(rateLimit int, rateWindow time.Duration, allowedOrigins []string) *Middleware {
	if rateLimit <= 0 {
		rateLimit = 1
	}
	return &Middleware{
		logger:         logger.Component("middleware"),
		rateLimiter:    rate.NewLimiter(rate.Every(rateWindow/time.Duration(rateLimit)), rateLimit),
		allowedOrigins: allowedOrigins,
	}
}

func (m *Middleware) CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := m.allowOrigin(c.GetHeader("Origin"))
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			if origin != "*" {
				c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// allowOrigin returns the value for Access-Control-Allow-Origin, or "" when
// the request origin is not allowed.
func (m *Middleware) allowOrigin(origin string) string {
	if len(m.allowedOrigins) == 0 || lo.Contains(m.allowedOrigins, "*") {
		return "*"
	}
	if origin != "" && lo.Contains(m.allowedOrigins, origin) {
		return origin
	}
	return ""
}

func (m *Middleware) Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)

		if len(c.Errors) > 0 {
			for _, e := range c.Errors.Errors() {
				m.logger.Error(e)
			}
			return
		}

		m.logger.Infof("HTTP | %3d | %13v | %15s | %-7s %s",
			c.Writer.Status(),
			latency,
			c.ClientIP(),
			c.Request.Method,
			path,
		)
	}
}

func (m *Middleware) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.rateLimiter.Allow() {
			m.logger.Warnf("Rate limit exceeded for IP: %s", c.ClientIP())
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "Too Many Requests",
				"message": "Rate limit exceeded",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// Cache marks GET responses cacheable for maxAge and everything else as
// no-store.
func (m *Middleware) Cache(maxAge time.Duration) gin.HandlerFunc {
	value := fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds()))
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet {
			c.Writer.Header().Set("Cache-Control", value)
		} else {
			c.Writer.Header().Set("Cache-Control", "no-store")
		}
		c.Next()
	}
}

func (m *Middleware) Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				m.logger.Errorf("Panic recovered: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{
					"error":   "Internal Server Error",
					"message": "An unexpected error occurred",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}
