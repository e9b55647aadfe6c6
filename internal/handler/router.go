package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/sportify-web/internal/middleware"
	"github.com/prohmpiriya/sportify-web/pkg/telemetry"
)

// RouterOptions carries the optional guards; nil entries are skipped
type RouterOptions struct {
	// Throttle guards the credential forms
	Throttle gin.HandlerFunc
	// Idempotency guards the retryable /ui mutations
	Idempotency gin.HandlerFunc
}

// Router builds the gin engine with every page and /ui endpoint
func (h *Handler) Router(opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.SetHTMLTemplate(Templates())

	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(h.log))
	r.Use(telemetry.TracingMiddleware(h.serviceName))
	r.Use(middleware.Session(h.store, h.sessionCfg, h.log))
	r.Use(middleware.Logger(h.log))

	r.StaticFS("/static", Static())
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)

	throttled := guarded(opts.Throttle)
	replayable := guarded(opts.Idempotency)

	// Pages
	r.GET("/", h.Home)
	r.GET("/help", h.Help)
	r.GET("/login", h.LoginPage)
	r.POST("/login", append(throttled, h.Login)...)
	r.POST("/logout", h.Logout)
	r.GET("/signup", h.SignUpPage)
	r.POST("/signup", append(throttled, h.SignUp)...)
	r.GET("/bookings/:id", h.JoinPage)
	r.POST("/bookings/:id/join", h.Join)

	authed := r.Group("/", middleware.RequireLogin())
	{
		authed.GET("/court", h.Courts)
		authed.GET("/admin", middleware.RequireAdmin(), h.AdminPage)
	}

	// Browser shell endpoints
	ui := r.Group("/ui", middleware.CORS(middleware.UICORSConfig(h.origin)), middleware.RequireLogin())
	{
		// preflights stop in CORS
		ui.OPTIONS("/*path", func(c *gin.Context) {})

		ui.GET("/me", h.Me)

		flow := ui.Group("/booking-flow")
		{
			flow.GET("", h.GetFlow)
			flow.POST("/open", h.OpenFlow)
			flow.POST("/select", h.SelectTime)
			flow.POST("/submit", append(replayable, h.SubmitFlow)...)
			flow.POST("/close", h.CloseFlow)
			flow.POST("/copy", h.CopyLink)
		}

		adm := ui.Group("/admin", middleware.RequireAdmin())
		{
			adm.GET("/courts", h.ListCourts)
			adm.POST("/courts", append(replayable, h.CreateCourt)...)
			adm.PATCH("/courts/:id", h.UpdateCourt)
			adm.DELETE("/courts/:id", h.DeleteCourt)
			adm.GET("/bookings", h.ListBookings)
			adm.DELETE("/bookings/:id", h.DeleteBooking)
			adm.GET("/users", h.ListUsers)
			adm.GET("/users/:id", h.GetUser)
		}
	}

	r.NoRoute(h.NotFound)
	return r
}

func guarded(mw gin.HandlerFunc) []gin.HandlerFunc {
	if mw == nil {
		return nil
	}
	return []gin.HandlerFunc{mw}
}
