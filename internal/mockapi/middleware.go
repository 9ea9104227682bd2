package mockapi

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/kbukum/restkit/errors"
	"github.com/kbukum/restkit/logger"
)

const requestIDHeader = "X-Request-Id"

// recovery turns a handler panic into a 500 error response.
func recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic recovered", logger.Fields(
					"panic", fmt.Sprintf("%v", rec),
					"stack", string(debug.Stack()),
					logger.FieldMethod, c.Request.Method,
					logger.FieldURL, c.Request.URL.Path,
				))
				c.AbortWithStatusJSON(500, apperrors.Internal(fmt.Errorf("%v", rec)).ToResponse())
			}
		}()
		c.Next()
	}
}

// requestID echoes X-Request-Id, minting one when the caller sent none.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(logger.FieldRequestID, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// requestLogger logs each request at a level chosen by its status.
func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := logger.MergeWithDuration(logger.Fields(
			logger.FieldMethod, c.Request.Method,
			logger.FieldURL, c.Request.URL.RequestURI(),
			logger.FieldStatus, status,
			logger.FieldRequestID, c.GetString(logger.FieldRequestID),
		), time.Since(start))

		switch {
		case status >= 500:
			log.Error("request completed", fields)
		case status >= 400:
			log.Warn("request completed", fields)
		default:
			log.Debug("request completed", fields)
		}
	}
}
