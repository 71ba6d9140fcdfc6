// Package middleware provides the gin middleware chain for the API.
package middleware

import (
	"crypto/subtle"
	"strings"
	"time"

	app_errors "governd/internal/errors"
	"governd/internal/response"
	"governd/internal/types"
	"governd/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Recovery recovers from handler panics and reports a 500.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logrus.WithFields(logrus.Fields{
					"panic":  err,
					"path":   c.Request.URL.Path,
					"method": c.Request.Method,
				}).Error("panic recovered")
				response.Error(c, app_errors.ErrInternalServer)
				c.Abort()
			}
		}()
		c.Next()
	}
}

// ErrorHandler converts errors attached to the context into the standard
// envelope when no response has been written yet.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		if apiErr, ok := err.(*app_errors.APIError); ok {
			response.Error(c, apiErr)
			return
		}
		response.Error(c, app_errors.NewAPIError(app_errors.ErrInternalServer, err.Error()))
	}
}

// Logger emits one access log entry per request.
func Logger(logConfig types.LogConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logrus.WithFields(logrus.Fields{
			"status":    c.Writer.Status(),
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"client_ip": c.ClientIP(),
			"duration":  time.Since(start).String(),
		})

		switch {
		case c.Writer.Status() >= 500:
			entry.Error("request completed")
		case c.Writer.Status() >= 400:
			entry.Warn("request completed")
		default:
			entry.Info("request completed")
		}
	}
}

// CORS applies the configured cross-origin policy.
func CORS(corsConfig types.CORSConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !corsConfig.Enabled {
			c.Next()
			return
		}

		origin := c.GetHeader("Origin")
		allowed := ""
		for _, o := range corsConfig.AllowedOrigins {
			if o == "*" || o == origin {
				allowed = o
				break
			}
		}

		if allowed != "" {
			c.Header("Access-Control-Allow-Origin", allowed)
			c.Header("Access-Control-Allow-Methods", strings.Join(corsConfig.AllowedMethods, ", "))
			c.Header("Access-Control-Allow-Headers", strings.Join(corsConfig.AllowedHeaders, ", "))
			if corsConfig.AllowCredentials {
				c.Header("Access-Control-Allow-Credentials", "true")
			}
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

// RateLimiter bounds the number of requests handled concurrently.
func RateLimiter(perfConfig types.PerformanceConfig) gin.HandlerFunc {
	if perfConfig.MaxConcurrentRequests <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	semaphore := make(chan struct{}, perfConfig.MaxConcurrentRequests)
	return func(c *gin.Context) {
		select {
		case semaphore <- struct{}{}:
			defer func() { <-semaphore }()
			c.Next()
		default:
			response.Error(c, app_errors.NewAPIErrorWithUpstream(429, "TOO_MANY_REQUESTS", "Server is busy, please try again later"))
			c.Abort()
		}
	}
}

// Auth guards the management API with the configured access key.
func Auth(authConfig types.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := extractKey(c)
		if key == "" || !verifyKey(key, authConfig.Key) {
			response.Error(c, app_errors.ErrUnauthorized)
			c.Abort()
			return
		}
		c.Next()
	}
}

func extractKey(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return c.GetHeader("X-Auth-Key")
}

func verifyKey(provided, configured string) bool {
	if configured == "" {
		return false
	}
	if strings.HasPrefix(configured, "$2a$") || strings.HasPrefix(configured, "$2b$") {
		return utils.CheckPasswordHash(provided, configured)
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(configured)) == 1
}
