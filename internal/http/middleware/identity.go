package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-medtrack-backend/internal/session"
)

// Context keys written by Identity and consumed by handlers, the logger, and
// the rate limiter key function.
const (
	ctxKeyUserID   = "userID"
	ctxKeyIdentity = "identity"
)

// Identity resolves the caller through the given session provider and stores
// the result in the Gin context. Place it after RequestID() and before
// Logger() so access logs carry the user ID.
func Identity(p session.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := p.Identity(c.Request)
		c.Set(ctxKeyUserID, id.UserID)
		c.Set(ctxKeyIdentity, id)
		c.Next()
	}
}

// IdentityFrom returns the resolved identity, or a zero Identity when the
// middleware did not run.
func IdentityFrom(c *gin.Context) session.Identity {
	if v, ok := c.Get(ctxKeyIdentity); ok {
		if id, ok := v.(session.Identity); ok {
			return id
		}
	}
	return session.Identity{}
}
