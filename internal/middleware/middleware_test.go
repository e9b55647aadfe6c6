package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/sportify-web/internal/domain"
	"github.com/prohmpiriya/sportify-web/internal/session"
	"github.com/prohmpiriya/sportify-web/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testSessionConfig = SessionConfig{CookieName: "sid", TTL: time.Hour}

func TestRequestID_GeneratesNew(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	headerID := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, headerID)
	assert.Equal(t, headerID, w.Body.String())
}

func TestRequestID_ReusesSaneIncoming(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(RequestIDHeader, "existing-request-id-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "existing-request-id-123", w.Body.String())

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", 200))
	r.ServeHTTP(w, req)
	assert.NotEqual(t, strings.Repeat("x", 200), w.Body.String())
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS(UICORSConfig("https://sportify.app")))
	r.GET("/ui/x", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.OPTIONS("/ui/x", func(c *gin.Context) { c.String(http.StatusOK, "unreachable") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ui/x", nil)
	req.Header.Set("Origin", "https://sportify.app")
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://sportify.app", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "600", w.Header().Get("Access-Control-Max-Age"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/ui/x", nil)
	req.Header.Set("Origin", "https://evil.example")
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodOptions, "/ui/x", nil)
	req.Header.Set("Origin", "https://sportify.app")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func sessionRouter(store session.Store) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Session(store, testSessionConfig, logger.NewNop()))
	r.GET("/public", func(c *gin.Context) {
		c.String(http.StatusOK, GetSession(c).ID())
	})
	r.GET("/court", RequireLogin(), func(c *gin.Context) {
		c.String(http.StatusOK, "catalog")
	})
	r.GET("/ui/booking-flow", RequireLogin(), func(c *gin.Context) {
		c.String(http.StatusOK, "flow")
	})
	r.GET("/admin", RequireLogin(), RequireAdmin(), func(c *gin.Context) {
		c.String(http.StatusOK, "admin")
	})
	return r
}

func TestSession_IssuesCookie(t *testing.T) {
	r := sessionRouter(session.NewMemoryStore(0))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public", nil))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, cookies[0].Value, w.Body.String())
}

func TestSession_ReplacesMalformedCookie(t *testing.T) {
	r := sessionRouter(session.NewMemoryStore(0))

	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "../../etc"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.NotEqual(t, "../../etc", w.Body.String())
	require.Len(t, w.Result().Cookies(), 1)
}

func loggedIn(t *testing.T, store session.Store, role domain.Role) string {
	t.Helper()
	sid := session.NewID()
	s := session.New(store, sid)
	require.NoError(t, s.Login(context.Background(), "opaque", &domain.User{ID: 1, Email: "ana@sportify.app", Role: role}))
	return sid
}

func TestRequireLogin(t *testing.T) {
	store := session.NewMemoryStore(0)
	r := sessionRouter(store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/court?page=2", nil))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login?next=%2Fcourt%3Fpage%3D2", w.Header().Get("Location"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ui/booking-flow", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")

	sid := loggedIn(t, store, domain.RoleRegular)
	req := httptest.NewRequest(http.MethodGet, "/court", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogoutThenProtectedRedirects(t *testing.T) {
	store := session.NewMemoryStore(0)
	r := sessionRouter(store)
	sid := loggedIn(t, store, domain.RoleRegular)

	require.NoError(t, session.New(store, sid).Logout(context.Background()))

	req := httptest.NewRequest(http.MethodGet, "/court", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/login"))
}

func TestRequireAdmin(t *testing.T) {
	store := session.NewMemoryStore(0)
	r := sessionRouter(store)

	regular := loggedIn(t, store, domain.RoleRegular)
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: regular})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := loggedIn(t, store, domain.RoleAdmin)
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: admin})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLocalRateLimiter(t *testing.T) {
	rl := NewLocalRateLimiter(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 2})
	defer rl.Stop()

	ctx := context.Background()
	ok, _ := rl.Allow(ctx, "ip")
	assert.True(t, ok)
	ok, _ = rl.Allow(ctx, "ip")
	assert.True(t, ok)
	ok, _ = rl.Allow(ctx, "ip")
	assert.False(t, ok)

	ok, _ = rl.Allow(ctx, "other-ip")
	assert.True(t, ok)
}

type failingLimiter struct{}

func (failingLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return false, errors.New("redis down")
}

func TestRateLimit_Middleware(t *testing.T) {
	rl := NewLocalRateLimiter(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1})
	defer rl.Stop()

	r := gin.New()
	r.POST("/login", RateLimit(rl, RateLimitConfig{RequestsPerSecond: 1, KeyPrefix: "login:"}, logger.NewNop()), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
}

func TestRateLimit_FailsOpen(t *testing.T) {
	r := gin.New()
	r.POST("/ui/x", RateLimit(failingLimiter{}, RateLimitConfig{RequestsPerSecond: 1}, logger.NewNop()), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/ui/x", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery(logger.NewNop()))
	r.GET("/ui/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ui/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}
