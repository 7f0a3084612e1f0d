package requestid

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Header carries the request id in and out of the API.
const Header = "X-Request-ID"

const maxInboundLength = 64

type ctxKey struct{}

// Middleware tags each request with an id, reusing a well-formed inbound
// X-Request-ID. The id is placed on the request context so it follows
// queued generation jobs into the worker logs.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if !acceptable(id) {
			id = uuid.NewString()
		}
		c.Request = c.Request.WithContext(WithValue(c.Request.Context(), id))
		c.Header(Header, id)
		c.Next()
	}
}

// Value returns the request id of a gin request.
func Value(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return ""
	}
	return FromContext(c.Request.Context())
}

// WithValue stores a request id on ctx.
func WithValue(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the request id carried by ctx, if any.
func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// acceptable keeps client supplied ids short and printable since they end
// up in logs and job payloads.
func acceptable(id string) bool {
	if id == "" || len(id) > maxInboundLength {
		return false
	}
	for _, r := range id {
		if r < 0x21 || r > 0x7e {
			return false
		}
	}
	return true
}
