package middleware

import (
	"net/http"
	"time"

	"github.com/Payphone-Digital/openpayments/internal/constants"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows any origin to read the public datasets.
func CORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowHeaders:    []string{"Origin", "Accept", constants.HeaderContentType, constants.HeaderXRequestID},
		ExposeHeaders:   []string{constants.HeaderXRequestID, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:          12 * time.Hour,
	})
}
