// Package middleware 提供 HTTP 中间件.
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID 请求 ID 头.
const HeaderRequestID = "X-Request-ID"

const requestIDKey = "request_id"

// RequestIDMiddleware 为每个请求分配 ID；客户端已提供时沿用.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(requestIDKey, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// GetRequestID 返回当前请求 ID，未经过 RequestIDMiddleware 时为空.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// TimeoutMiddleware 为请求上下文设置截止时间，后端调用会随之取消. d <= 0 时不设置.
func TimeoutMiddleware(d time.Duration) gin.HandlerFunc {
	if d <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// abort 以统一的错误体结束请求: {statusCode, message, error}.
func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"statusCode": status,
		"message":    msg,
		"error":      http.StatusText(status),
	})
}
