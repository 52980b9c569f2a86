package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/muirkirkangling/memberportal/internal/session"
)

type SessionGate struct {
	sessions   *session.Manager
	cookieName string
}

func NewSessionGate(sessions *session.Manager, cookieName string) *SessionGate {
	return &SessionGate{sessions: sessions, cookieName: cookieName}
}

// RequireMember redirects anonymous visitors to the login page before any
// protected handler runs. An authenticated request gets the member's
// identity stashed on the context.
func (g *SessionGate) RequireMember() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(g.cookieName)

		if err != nil || token == "" {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		p, err := g.sessions.Lookup(c.Request.Context(), token)

		if err != nil || p.Email == "" {
			// destroyed or expired tokens behave like no session at all
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		c.Set(CtxMemberID, p.MemberID)
		c.Set(CtxEmail, p.Email)
		c.Set(CtxSessionToken, token)

		c.Next()
	}
}

// Helpers so handlers don't need to know the magic keys.

func EmailFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(CtxEmail)
	if !ok {
		return "", false
	}
	email, ok := v.(string)
	return email, ok
}

func MemberIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(CtxMemberID)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

func TokenFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(CtxSessionToken)
	if !ok {
		return "", false
	}
	token, ok := v.(string)
	return token, ok
}
