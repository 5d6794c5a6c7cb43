package middleware

import (
	"net/http"
	"time"

	"github.com/Payphone-Digital/openpayments/internal/constants"
	ctxutil "github.com/Payphone-Digital/openpayments/pkg/context"
	"github.com/Payphone-Digital/openpayments/pkg/logger"
	"github.com/gin-gonic/gin"
)

const slowRequestThreshold = 2 * time.Second

// RequestLogging logs one line per request, at a level chosen by status and latency.
func RequestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		latency := time.Since(startTime)
		status := c.Writer.Status()
		ctx := c.Request.Context()

		var entry *logger.ContextLogBuilder
		switch {
		case status >= http.StatusInternalServerError:
			entry = logger.ErrorWithContext(ctx, "Server error")
		case status >= http.StatusBadRequest:
			entry = logger.WarnWithContext(ctx, "Client error")
		case latency > slowRequestThreshold:
			entry = logger.WarnWithContext(ctx, "Slow request")
		default:
			entry = logger.InfoWithContext(ctx, "Request completed")
		}

		entry.
			String("method", c.Request.Method).
			String("path", c.Request.URL.Path).
			String("query", c.Request.URL.RawQuery).
			String("user_agent", ctxutil.GetUserAgent(ctx)).
			Int("status_code", status).
			Int("response_size", c.Writer.Size()).
			Duration(latency).
			Log()
	}
}

// Recovery turns a panic into the standard 500 body.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.LogPanic(recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, constants.BuildInternalErrorResponse())
	})
}
