package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prohmpiriya/sportify-web/internal/apiclient"
	"github.com/prohmpiriya/sportify-web/internal/bookingflow"
	"github.com/prohmpiriya/sportify-web/internal/domain"
	"github.com/prohmpiriya/sportify-web/internal/events"
	"github.com/prohmpiriya/sportify-web/internal/middleware"
	"github.com/prohmpiriya/sportify-web/internal/session"
	"github.com/prohmpiriya/sportify-web/internal/view"
	"github.com/prohmpiriya/sportify-web/pkg/logger"
	"github.com/prohmpiriya/sportify-web/pkg/response"
)

// HealthChecker is a dependency probed by /ready
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Config holds handler dependencies
type Config struct {
	API         *apiclient.Client
	Flows       *bookingflow.Registry
	Store       session.Store
	Activity    *events.AsyncPublisher
	Session     middleware.SessionConfig
	Origin      string
	ServiceName string
	Version     string
	Logger      *logger.Logger
	// Checks are probed by /ready, keyed by dependency name
	Checks map[string]HealthChecker
}

// Handler serves the pages and the /ui endpoints
type Handler struct {
	api         *apiclient.Client
	flows       *bookingflow.Registry
	store       session.Store
	activity    *events.AsyncPublisher
	sessionCfg  middleware.SessionConfig
	origin      string
	serviceName string
	version     string
	log         *logger.Logger
	checks      map[string]HealthChecker
}

// New creates a new handler
func New(cfg Config) *Handler {
	activity := cfg.Activity
	if activity == nil {
		activity = events.NewAsyncPublisher(events.NewNoOpPublisher())
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{
		api:         cfg.API,
		flows:       cfg.Flows,
		store:       cfg.Store,
		activity:    activity,
		sessionCfg:  cfg.Session,
		origin:      cfg.Origin,
		serviceName: cfg.ServiceName,
		version:     cfg.Version,
		log:         log,
		checks:      cfg.Checks,
	}
}

// client returns the API client bound to the caller's session
func (h *Handler) client(c *gin.Context) *apiclient.Client {
	if s := middleware.GetSession(c); s != nil {
		return h.api.WithTokens(s)
	}
	return h.api
}

func (h *Handler) currentUser(c *gin.Context) *domain.User {
	if s := middleware.GetSession(c); s != nil {
		return s.User()
	}
	return nil
}

// page builds the template data shared by every page
func (h *Handler) page(c *gin.Context, title string) gin.H {
	return gin.H{
		"Title":     title,
		"User":      h.currentUser(c),
		"RequestID": middleware.GetRequestID(c),
	}
}

func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	c.HTML(status, name, data)
}

// handleError renders err as the JSON envelope
func (h *Handler) handleError(c *gin.Context, err error) {
	status := statusCode(err)
	h.logError(c, status, err)
	response.Error(c, status, errorCode(err), domain.UserMessage(err), "")
}

// pageError renders err on the generic error page
func (h *Handler) pageError(c *gin.Context, err error) {
	status := domain.StatusCode(err)
	if errors.Is(err, domain.ErrUnauthenticated) {
		h.expireSession(c)
		c.Redirect(http.StatusSeeOther, "/login")
		c.Abort()
		return
	}
	h.logError(c, status, err)
	data := h.page(c, "Something went wrong")
	data["Status"] = status
	data["Notification"] = view.FromError(err)
	h.render(c, status, "error.html", data)
	c.Abort()
}

func (h *Handler) logError(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	if status >= 500 {
		h.log.ErrorContext(c.Request.Context(), "request failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
}

// expireSession drops a session the backend no longer accepts
func (h *Handler) expireSession(c *gin.Context) {
	s := middleware.GetSession(c)
	if s == nil {
		return
	}
	if err := s.Logout(c.Request.Context()); err != nil {
		h.log.Warn("failed to clear rejected session", zap.Error(err))
	}
	h.flows.Remove(s.ID())
}

func statusCode(err error) int {
	if errors.Is(err, bookingflow.ErrBusy) || errors.Is(err, bookingflow.ErrStale) {
		return http.StatusConflict
	}
	return domain.StatusCode(err)
}

func errorCode(err error) string {
	var apiErr *domain.APIError
	switch {
	case domain.IsValidationError(err):
		return "VALIDATION_ERROR"
	case errors.Is(err, domain.ErrUnauthenticated):
		return "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		return "FORBIDDEN"
	case errors.Is(err, domain.ErrInvalidShareToken):
		return "INVALID_SHARE_TOKEN"
	case errors.Is(err, domain.ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, domain.ErrBookingFull):
		return "BOOKING_FULL"
	case errors.Is(err, domain.ErrAlreadyJoined):
		return "ALREADY_JOINED"
	case errors.Is(err, domain.ErrMalformedResponse):
		return "MALFORMED_RESPONSE"
	case errors.Is(err, bookingflow.ErrBusy):
		return "BUSY"
	case errors.Is(err, bookingflow.ErrStale):
		return "SUPERSEDED"
	case errors.As(err, &apiErr):
		return "UPSTREAM_ERROR"
	default:
		return "BACKEND_UNAVAILABLE"
	}
}

func queryInt(c *gin.Context, key string, def int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil {
		return v
	}
	return def
}

func paramID(c *gin.Context, key string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(key), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func pageMeta(p domain.Page) response.PageMeta {
	return response.PageMeta{
		Page:       p.Page,
		Limit:      p.Limit,
		TotalCount: p.TotalCount,
		TotalPages: p.TotalPages(),
	}
}
