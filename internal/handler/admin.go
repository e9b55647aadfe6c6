package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/prohmpiriya/sportify-web/internal/admin"
	"github.com/prohmpiriya/sportify-web/internal/apiclient"
	"github.com/prohmpiriya/sportify-web/internal/domain"
	"github.com/prohmpiriya/sportify-web/internal/events"
	"github.com/prohmpiriya/sportify-web/internal/view"
	"github.com/prohmpiriya/sportify-web/pkg/response"
	"github.com/prohmpiriya/sportify-web/pkg/telemetry"
)

const adminPageLimit = 20

// AdminPage renders the court and reservation tables
func (h *Handler) AdminPage(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.page")
	defer span.End()

	api := h.client(c)
	data := h.page(c, "Administration")

	courts := admin.NewCourtsView(api)
	if err := courts.Load(ctx, queryInt(c, "courts_page", 1), adminPageLimit); err != nil {
		telemetry.RecordError(span, err)
	}
	bookings := admin.NewBookingsView(api)
	filter := apiclient.BookingFilter{PageRequest: apiclient.PageRequest{Page: queryInt(c, "bookings_page", 1), Limit: adminPageLimit}}
	if err := bookings.Load(ctx, filter); err != nil {
		telemetry.RecordError(span, err)
	}

	data["CourtsView"] = courts
	data["BookingsView"] = bookings
	h.render(c, http.StatusOK, "admin.html", data)
}

// ListCourts returns one page of courts for the admin table
func (h *Handler) ListCourts(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.list_courts")
	defer span.End()

	v := admin.NewCourtsView(h.client(c))
	if err := v.Load(ctx, queryInt(c, "page", 1), queryInt(c, "limit", adminPageLimit)); err != nil {
		telemetry.RecordError(span, err)
		h.handleError(c, err)
		return
	}
	response.SuccessWithMeta(c, v.Courts(), pageMeta(v.Page()))
}

type courtResult struct {
	Court        *domain.Court      `json:"court"`
	Notification *view.Notification `json:"notification"`
}

// CreateCourt creates a court
func (h *Handler) CreateCourt(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.create_court")
	defer span.End()

	var in domain.CourtInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "invalid court: "+err.Error())
		return
	}

	v := admin.NewCourtsView(h.client(c))
	court, err := v.Create(ctx, in)
	if err != nil {
		telemetry.RecordError(span, err)
		h.handleError(c, err)
		return
	}

	h.activity.Go(events.NewCourtEvent(events.CourtCreated, court, h.currentUser(c)))
	response.Created(c, courtResult{Court: court, Notification: v.Notification()})
}

// UpdateCourt edits a court
func (h *Handler) UpdateCourt(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.update_court")
	defer span.End()

	id, ok := paramID(c, "id")
	if !ok {
		h.handleError(c, domain.ErrInvalidCourt)
		return
	}
	span.SetAttributes(attribute.Int64("court_id", id))

	var in domain.CourtInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "invalid court: "+err.Error())
		return
	}

	v := admin.NewCourtsView(h.client(c))
	court, err := v.Update(ctx, id, in)
	if err != nil {
		telemetry.RecordError(span, err)
		h.handleError(c, err)
		return
	}

	h.activity.Go(events.NewCourtEvent(events.CourtUpdated, court, h.currentUser(c)))
	response.Success(c, courtResult{Court: court, Notification: v.Notification()})
}

// DeleteCourt removes a court
func (h *Handler) DeleteCourt(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.delete_court")
	defer span.End()

	id, ok := paramID(c, "id")
	if !ok {
		h.handleError(c, domain.ErrInvalidCourt)
		return
	}

	v := admin.NewCourtsView(h.client(c))
	if err := v.Delete(ctx, id); err != nil {
		telemetry.RecordError(span, err)
		h.handleError(c, err)
		return
	}

	h.activity.Go(events.NewCourtEvent(events.CourtDeleted, &domain.Court{ID: id}, h.currentUser(c)))
	response.Success(c, v.Notification())
}

// ListBookings returns one page of reservations with court names resolved
func (h *Handler) ListBookings(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.list_bookings")
	defer span.End()

	filter := apiclient.BookingFilter{
		PageRequest: apiclient.PageRequest{Page: queryInt(c, "page", 1), Limit: queryInt(c, "limit", adminPageLimit)},
		PublicOnly:  c.Query("public") == "true",
		CourtID:     int64(queryInt(c, "court_id", 0)),
	}

	v := admin.NewBookingsView(h.client(c))
	if err := v.Load(ctx, filter); err != nil {
		telemetry.RecordError(span, err)
		h.handleError(c, err)
		return
	}
	response.SuccessWithMeta(c, v.Rows(), pageMeta(v.Page()))
}

// DeleteBooking cancels a reservation
func (h *Handler) DeleteBooking(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.delete_booking")
	defer span.End()

	id, ok := paramID(c, "id")
	if !ok {
		h.handleError(c, domain.ErrNotFound)
		return
	}

	v := admin.NewBookingsView(h.client(c))
	if err := v.Delete(ctx, id); err != nil {
		telemetry.RecordError(span, err)
		h.handleError(c, err)
		return
	}

	h.activity.Go(events.NewBookingEvent(events.BookingDeleted, &domain.Booking{ID: id}, h.currentUser(c)))
	response.Success(c, v.Notification())
}

// ListUsers returns one page of accounts
func (h *Handler) ListUsers(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.list_users")
	defer span.End()

	users, page, err := admin.LoadUsers(ctx, h.client(c), queryInt(c, "page", 1), queryInt(c, "limit", adminPageLimit))
	if err != nil {
		telemetry.RecordError(span, err)
		h.handleError(c, err)
		return
	}
	response.SuccessWithMeta(c, users, pageMeta(page))
}

// GetUser returns one account
func (h *Handler) GetUser(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.get_user")
	defer span.End()

	id, ok := paramID(c, "id")
	if !ok {
		h.handleError(c, domain.ErrNotFound)
		return
	}

	user, err := h.client(c).GetUser(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		h.handleError(c, err)
		return
	}
	response.Success(c, user)
}
