package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RequestLogger logs each request with its route, sizes, latency and request ID.
// Successful requests to quiet paths are logged at debug level.
func RequestLogger(logger *zap.Logger, quiet ...string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.L()
	}
	quietPaths := make(map[string]struct{}, len(quiet))
	for _, p := range quiet {
		quietPaths[p] = struct{}{}
	}

	return func(c *gin.Context) {
		start := time.Now()
		requestID := strings.TrimSpace(c.Request.Header.Get("X-Request-ID"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		path := c.Request.URL.Path
		if rawQuery := c.Request.URL.RawQuery; rawQuery != "" {
			path = path + "?" + rawQuery
		}

		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.String("path", path),
			zap.Int64("bytes_in", c.Request.ContentLength),
			zap.Int("bytes_out", max(c.Writer.Size(), 0)),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
		}

		if identity, ok := GetIdentity(c); ok {
			fields = append(fields, zap.String("email", identity.Email))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		logger.Log(requestLevel(status, c.Request.URL.Path, quietPaths), "http_request", fields...)
	}
}

func requestLevel(status int, path string, quiet map[string]struct{}) zapcore.Level {
	switch {
	case status >= 500:
		return zapcore.ErrorLevel
	case status >= 400:
		return zapcore.WarnLevel
	}
	if _, ok := quiet[path]; ok {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}
