package middleware

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prohmpiriya/sportify-web/internal/session"
	"github.com/prohmpiriya/sportify-web/pkg/logger"
)

const (
	// SessionKey is the context key holding *session.Session
	SessionKey = "session"
	// UserIDKey is the context key holding the logged in user id
	UserIDKey = "user_id"
)

// SessionConfig holds the session cookie settings
type SessionConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Session loads the browser session named by the cookie, issuing a new
// cookie when it is missing or malformed
func Session(store session.Store, cfg SessionConfig, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(cfg.CookieName)
		if err != nil || uuid.Validate(sid) != nil {
			sid = session.NewID()
			SetSessionCookie(c, cfg, sid)
		}

		s := session.New(store, sid)
		if err := s.Hydrate(c.Request.Context()); err != nil {
			// degrade to anonymous; the store may be down
			log.Warn("failed to hydrate session",
				zap.String("request_id", GetRequestID(c)),
				zap.Error(err),
			)
		}

		c.Set(SessionKey, s)
		if u := s.User(); u != nil {
			c.Set(UserIDKey, u.ID)
		}

		c.Next()
	}
}

// SetSessionCookie writes the session cookie
func SetSessionCookie(c *gin.Context, cfg SessionConfig, sid string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.CookieName, sid, int(cfg.TTL.Seconds()), "/", "", cfg.Secure, true)
}

// GetSession returns the session of the request, nil outside Session
func GetSession(c *gin.Context) *session.Session {
	if v, ok := c.Get(SessionKey); ok {
		if s, ok := v.(*session.Session); ok {
			return s
		}
	}
	return nil
}

// RequireLogin redirects anonymous page requests to /login and answers
// 401 on JSON endpoints
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := GetSession(c)
		if s != nil && s.Authenticated() {
			c.Next()
			return
		}

		if WantsJSON(c) {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Please log in to continue.")
			return
		}
		next := c.Request.URL.RequestURI()
		c.Redirect(http.StatusSeeOther, "/login?next="+url.QueryEscape(next))
		c.Abort()
	}
}

// RequireAdmin rejects logged in users that are not administrators.
// Use after RequireLogin.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := GetSession(c)
		if s == nil || !s.IsAdmin() {
			abort(c, http.StatusForbidden, "FORBIDDEN", "Administrator access required.")
			return
		}
		c.Next()
	}
}
