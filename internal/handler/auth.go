package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/prohmpiriya/sportify-web/internal/apiclient"
	"github.com/prohmpiriya/sportify-web/internal/middleware"
	"github.com/prohmpiriya/sportify-web/internal/session"
	"github.com/prohmpiriya/sportify-web/internal/view"
	"github.com/prohmpiriya/sportify-web/pkg/response"
	"github.com/prohmpiriya/sportify-web/pkg/telemetry"
)

// LoginForm is the submitted login form
type LoginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
	Next     string `form:"next"`
}

// SignUpForm is the submitted registration form
type SignUpForm struct {
	Name                 string `form:"name"`
	Email                string `form:"email"`
	Password             string `form:"password"`
	PasswordConfirmation string `form:"password_confirmation"`
	Document             string `form:"document"`
}

// LoginPage renders the login form
func (h *Handler) LoginPage(c *gin.Context) {
	if s := middleware.GetSession(c); s != nil && s.Authenticated() {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	data := h.page(c, "Log in")
	data["Form"] = LoginForm{Next: safeNext(c.Query("next"))}
	if c.Query("signed_up") != "" {
		data["Notification"] = view.Success("Account created, you can log in now.")
	}
	h.render(c, http.StatusOK, "login.html", data)
}

// Login signs in against the backend and starts a fresh session
func (h *Handler) Login(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.auth.login")
	defer span.End()

	var form LoginForm
	_ = c.ShouldBind(&form)
	form.Email = strings.TrimSpace(form.Email)
	form.Next = safeNext(form.Next)

	token, user, err := h.api.SignIn(ctx, form.Email, form.Password)
	if err != nil {
		telemetry.RecordError(span, err)
		data := h.page(c, "Log in")
		form.Password = ""
		data["Form"] = form
		data["Notification"] = view.FromError(err)
		h.render(c, statusCode(err), "login.html", data)
		return
	}
	span.SetAttributes(attribute.Int64("user_id", user.ID))

	// a new id on login keeps a planted cookie from inheriting the account
	fresh := session.New(h.store, session.NewID())
	if err := fresh.Login(ctx, token, user); err != nil {
		h.pageError(c, err)
		return
	}
	if old := middleware.GetSession(c); old != nil {
		if err := old.Logout(ctx); err != nil {
			h.log.Warn("failed to clear previous session", zap.Error(err))
		}
		h.flows.Remove(old.ID())
	}
	middleware.SetSessionCookie(c, h.sessionCfg, fresh.ID())

	next := form.Next
	if next == "/" && user.IsAdmin() {
		next = "/admin"
	}
	c.Redirect(http.StatusSeeOther, next)
}

// Logout clears token and user and returns to the login page
func (h *Handler) Logout(c *gin.Context) {
	if s := middleware.GetSession(c); s != nil {
		if err := s.Logout(c.Request.Context()); err != nil {
			h.pageError(c, err)
			return
		}
		h.flows.Remove(s.ID())
	}
	c.Redirect(http.StatusSeeOther, "/login")
}

// SignUpPage renders the registration form
func (h *Handler) SignUpPage(c *gin.Context) {
	data := h.page(c, "Sign up")
	data["Form"] = SignUpForm{}
	h.render(c, http.StatusOK, "signup.html", data)
}

// SignUp creates the account and sends the user to the login page
func (h *Handler) SignUp(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.auth.signup")
	defer span.End()

	var form SignUpForm
	_ = c.ShouldBind(&form)

	_, err := h.api.SignUp(ctx, apiclient.SignUpRequest{
		Name:                 strings.TrimSpace(form.Name),
		Email:                strings.TrimSpace(form.Email),
		Password:             form.Password,
		PasswordConfirmation: form.PasswordConfirmation,
		Document:             strings.TrimSpace(form.Document),
	})
	if err != nil {
		telemetry.RecordError(span, err)
		data := h.page(c, "Sign up")
		form.Password, form.PasswordConfirmation = "", ""
		data["Form"] = form
		data["Notification"] = view.FromError(err)
		h.render(c, statusCode(err), "signup.html", data)
		return
	}

	c.Redirect(http.StatusSeeOther, "/login?signed_up=1")
}

// safeNext only allows local absolute paths as redirect targets
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	if strings.HasPrefix(next, "/login") || strings.HasPrefix(next, "/logout") {
		return "/"
	}
	return next
}

// Me refreshes the profile from the backend and persists it in the session
func (h *Handler) Me(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.auth.me")
	defer span.End()

	s := middleware.GetSession(c)
	user, err := h.client(c).Me(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		h.flowError(c, err)
		return
	}

	token, err := s.Token(ctx)
	if err == nil {
		err = s.Login(ctx, token, user)
	}
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, user)
}
