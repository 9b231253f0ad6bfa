package rest

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/izzddalfk/zhuanxie/internal/transcriber/core"
	"github.com/izzddalfk/zhuanxie/internal/transcriber/presentation/rest/handlers"
)

const (
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
)

// RequestID adds a request ID to the context and the response headers
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		requestID := ctx.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx.Set(requestIDKey, requestID)
		ctx.Header(requestIDHeader, requestID)
		ctx.Next()
	}
}

// Logging logs HTTP requests
func Logging(logger *slog.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		ctx.Next()

		attrs := []any{
			"method", ctx.Request.Method,
			"path", ctx.Request.URL.Path,
			"query", ctx.Request.URL.RawQuery,
			"status", ctx.Writer.Status(),
			"duration", time.Since(start),
			"remote_addr", ctx.ClientIP(),
			"request_id", getRequestID(ctx),
			"content_length", ctx.Request.ContentLength,
		}
		if len(ctx.Errors) > 0 {
			attrs = append(attrs, "errors", ctx.Errors.String())
		}

		logger.InfoContext(ctx, "HTTP request processed", attrs...)
	}
}

// Recovery recovers from panics
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.ErrorContext(ctx, "Panic recovered",
					"error", err,
					"stack", string(debug.Stack()),
					"method", ctx.Request.Method,
					"path", ctx.Request.URL.Path,
					"request_id", getRequestID(ctx),
				)

				ctx.AbortWithStatusJSON(http.StatusInternalServerError,
					handlers.NewErrorResponse(fmt.Sprintf("Internal server error (request %s)", getRequestID(ctx))))
			}
		}()

		ctx.Next()
	}
}

// CORS adds CORS headers
func CORS() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Header("Access-Control-Allow-Origin", "*")
		ctx.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		ctx.Header("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		ctx.Header("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")
		ctx.Header("Access-Control-Max-Age", "3600")

		// Handle preflight requests
		if ctx.Request.Method == http.MethodOptions {
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}

		ctx.Next()
	}
}

// Security adds security headers
func Security() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Header("X-Content-Type-Options", "nosniff")
		ctx.Header("X-Frame-Options", "DENY")
		ctx.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		ctx.Next()
	}
}

// RateLimit throttles requests per client IP
func RateLimit(limiter core.RateLimiter) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if err := limiter.Allow(ctx, ctx.ClientIP()); err != nil {
			handlers.AbortWithError(ctx, err)
			return
		}
		ctx.Next()
	}
}

// MaxBodySize caps the request body
func MaxBodySize(limit int64) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, limit)
		ctx.Next()
	}
}

// getRequestID extracts request ID from context
func getRequestID(ctx *gin.Context) string {
	if id := ctx.GetString(requestIDKey); id != "" {
		return id
	}
	return "unknown"
}
