package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/mealcart/mealcart/internal/types"
)

// RequestIDMiddleware tags every request with an id for log correlation
func RequestIDMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		// short ids keep log lines and response headers compact
		requestID = types.GenerateShortIDWithPrefix(types.UUID_PREFIX_REQUEST)
	}

	ctx = context.WithValue(ctx, types.CtxRequestID, requestID)
	c.Request = c.Request.WithContext(ctx)

	c.Header(types.HeaderRequestID, requestID)

	c.Next()
}
