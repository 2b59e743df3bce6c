package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/todoapi/internal/common"
	"github.com/dmitrijs2005/todoapi/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"

	ctxKeyLogger = "logger"
	ctxKeyUserID = "userID"
	ctxKeyName   = "userName"
)

// RequestLogger tags each request with an id (taken from X-Request-ID when
// the caller supplies one) and logs method, path, status and latency once
// the handler chain has finished.
func RequestLogger(l logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)

		rl := l.With("request_id", id)
		c.Set(ctxKeyLogger, rl)

		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
		}
		if status >= http.StatusInternalServerError {
			rl.Warn(c.Request.Context(), "request served", args...)
		} else {
			rl.Info(c.Request.Context(), "request served", args...)
		}
	}
}

// Recovery turns a handler panic into a logged 500.
func Recovery(l logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if p := recover(); p != nil {
				requestLogger(c, l).Error(c.Request.Context(), "panic in handler", "panic", p)
				abortWithError(c, http.StatusInternalServerError, "internal error")
			}
		}()
		c.Next()
	}
}

// AuthMiddleware requires "Authorization: Bearer <jwt>" and stores the
// caller's user id for the handlers.
func AuthMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeaderName)
		raw, ok := strings.CutPrefix(header, common.BearerPrefix)
		if !ok || raw == "" {
			c.Header("WWW-Authenticate", "Bearer")
			abortWithError(c, http.StatusUnauthorized, "bearer token required")
			return
		}

		claims, err := tokens.Parse(raw)
		if err != nil {
			c.Header("WWW-Authenticate", `Bearer error="invalid_token"`)
			abortWithError(c, http.StatusUnauthorized, err.Error())
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, err.Error())
			return
		}

		c.Set(ctxKeyUserID, userID)
		c.Set(ctxKeyName, claims.Name)
		c.Next()
	}
}

func requestLogger(c *gin.Context, fallback logging.Logger) logging.Logger {
	if v, ok := c.Get(ctxKeyLogger); ok {
		if l, ok := v.(logging.Logger); ok {
			return l
		}
	}
	return fallback
}

func currentUserID(c *gin.Context) int64 {
	return c.GetInt64(ctxKeyUserID)
}
