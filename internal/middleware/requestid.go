package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"jobportal/internal/api"
)

const requestIDKey = "request.id"

// RequestID accepts a caller supplied X-Request-ID when it is a UUID and
// mints one otherwise. The id is echoed back and forwarded to the backend.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(api.RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(api.RequestIDHeader, id)
		c.Next()
	}
}

func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
