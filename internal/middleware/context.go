package middleware

import (
	"github.com/Payphone-Digital/openpayments/internal/constants"
	ctxutil "github.com/Payphone-Digital/openpayments/pkg/context"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxRequestIDLength = 128

// RequestContext attaches request ID, client IP and user agent to the request
// context. A caller-supplied X-Request-ID is kept; otherwise a UUID is minted.
// The ID is echoed in the response header.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(constants.HeaderXRequestID)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.NewString()
		}

		ctx := ctxutil.WithRequestInfo(c.Request.Context(), requestID, c.ClientIP(), c.Request.UserAgent())
		c.Request = c.Request.WithContext(ctx)
		c.Header(constants.HeaderXRequestID, requestID)

		c.Next()
	}
}
