package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/medication-reminder/internal/session"
	"github.com/oksasatya/medication-reminder/pkg/response"
)

const CtxUserIDKey = "userID"

// SessionVerifier rebuilds a session from an access token.
type SessionVerifier interface {
	Verify(ctx context.Context, accessToken string) (*session.Session, error)
}

// Session gives every request its own session holder on the request
// context, seeded from the access token when one verifies. It never
// rejects; RequireAuth does.
func Session(v SessionVerifier, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := session.NewHolder(nil)
		if token := AccessToken(c); token != "" && v != nil {
			sess, err := v.Verify(c.Request.Context(), token)
			switch {
			case err != nil:
				if logger != nil {
					logger.WithFields(logrus.Fields{
						"request_id": c.GetString("request_id"),
						"error":      err.Error(),
					}).Debug("access token rejected")
				}
			case sess != nil:
				h.Set(sess)
				c.Set(CtxUserIDKey, sess.UserID)
			}
		}
		c.Request = c.Request.WithContext(session.NewContext(c.Request.Context(), h))
		c.Next()
	}
}

// RequireAuth aborts with 401 unless Session resolved a user.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserID(c) == "" {
			response.Error[any](c, http.StatusUnauthorized, "unauthorized", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user id, or "".
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserIDKey)
}

// Holder returns the request's session holder, or nil outside Session.
func Holder(c *gin.Context) *session.Holder {
	return session.FromContext(c.Request.Context())
}
