package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gjc-app/board-sync/pkg/apperrors"
	"github.com/gjc-app/board-sync/repos/localslot"
	"github.com/gjc-app/board-sync/services/identity"
	"github.com/gjc-app/board-sync/services/session"
)

const sessionKey = "session"

// IdentityMiddleware bootstraps the anonymous actor behind the request's
// cookie and attaches the session to the context. There is no sign-in: the
// cookie is the actor.
func IdentityMiddleware(ids identity.Service, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		slot := localslot.NewCookie(c, secureCookie)

		s, err := ids.EnsureIdentity(c.Request.Context(), slot)
		if err != nil {
			c.JSON(apperrors.HTTPStatus(err), gin.H{"error": apperrors.Message(err)})
			c.Abort()
			return
		}

		// Attach session to the context
		c.Set(sessionKey, s)

		c.Next()
	}
}

// SessionFrom returns the session set by IdentityMiddleware.
func SessionFrom(c *gin.Context) (session.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return session.Session{}, false
	}
	s, ok := v.(session.Session)
	return s, ok
}

// MustSession aborts with 401 when the middleware did not run.
func MustSession(c *gin.Context) (session.Session, bool) {
	s, ok := SessionFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		c.Abort()
	}
	return s, ok
}
