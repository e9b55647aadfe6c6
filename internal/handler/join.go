package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/prohmpiriya/sportify-web/internal/domain"
	"github.com/prohmpiriya/sportify-web/internal/events"
	"github.com/prohmpiriya/sportify-web/internal/join"
	"github.com/prohmpiriya/sportify-web/pkg/telemetry"
)

// JoinPage renders the invitation page behind a share link
func (h *Handler) JoinPage(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.join.page")
	defer span.End()

	id, ok := paramID(c, "id")
	if !ok {
		h.renderJoin(c, http.StatusNotFound, &join.Page{NotFound: true})
		return
	}
	span.SetAttributes(attribute.Int64("booking_id", id))

	p, err := join.Load(ctx, h.client(c), id, c.Query("token"))
	if err != nil {
		telemetry.RecordError(span, err)
		h.renderJoin(c, statusCode(err), p)
		return
	}
	h.renderJoin(c, http.StatusOK, p)
}

// Join registers the visitor as a participant
func (h *Handler) Join(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.join.submit")
	defer span.End()

	id, ok := paramID(c, "id")
	if !ok {
		h.renderJoin(c, http.StatusNotFound, &join.Page{NotFound: true})
		return
	}
	span.SetAttributes(attribute.Int64("booking_id", id))

	var form join.Form
	_ = c.ShouldBind(&form)
	token := c.PostForm("token")
	if token == "" {
		token = c.Query("token")
	}

	api := h.client(c)
	p, err := join.Load(ctx, api, id, token)
	if err != nil {
		telemetry.RecordError(span, err)
		h.renderJoin(c, statusCode(err), p)
		return
	}

	if err := p.Submit(ctx, api, form); err != nil {
		telemetry.RecordError(span, err)
		h.renderJoin(c, statusCode(err), p)
		return
	}

	role, _ := domain.ParsePosition(form.Role)
	h.activity.Go(events.NewParticipantEvent(p.Booking, strings.TrimSpace(form.Nickname), role))
	h.renderJoin(c, http.StatusOK, p)
}

func (h *Handler) renderJoin(c *gin.Context, status int, p *join.Page) {
	if p.Positions == nil {
		p.Positions = domain.Positions
	}
	data := h.page(c, "Join game")
	data["Join"] = p
	data["Notification"] = p.Notification
	h.render(c, status, "join.html", data)
}
