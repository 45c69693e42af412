package middlewares

import (
	"net"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DigitariaWebs/corp1o1-sub005/internal/infrastructure/ratelimit"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/utils/platformerrors"
)

// RateLimitMiddleware throttles requests per client key using the given store.
func RateLimitMiddleware(store ratelimit.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, retryAfter := store.Allow(rateKey(c), time.Now())
		if !allowed {
			seconds := int(retryAfter.Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(429, gin.H{
				"error":   string(platformerrors.ErrorTypeRateLimited),
				"message": "Too many requests",
			})
			return
		}

		c.Next()
	}
}

func rateKey(c *gin.Context) string {
	ip := clientIP(c.ClientIP())
	if ip != "" {
		return "ip:" + ip
	}
	return "anonymous"
}

// Normalize IPv6-mapped IPv4 etc.
func clientIP(raw string) string {
	if raw == "" {
		return ""
	}
	if ip := net.ParseIP(raw); ip != nil {
		return ip.String()
	}
	return raw
}
