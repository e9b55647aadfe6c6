package handler

import (
	"errors"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/prohmpiriya/sportify-web/internal/bookingflow"
	"github.com/prohmpiriya/sportify-web/internal/domain"
	"github.com/prohmpiriya/sportify-web/internal/events"
	"github.com/prohmpiriya/sportify-web/internal/middleware"
	"github.com/prohmpiriya/sportify-web/internal/sharing"
	"github.com/prohmpiriya/sportify-web/pkg/response"
	"github.com/prohmpiriya/sportify-web/pkg/telemetry"
)

// OpenFlowRequest opens the booking modal for a court
type OpenFlowRequest struct {
	CourtID int64  `json:"court_id" binding:"required,min=1"`
	Date    string `json:"date" binding:"omitempty,datetime=2006-01-02"`
}

// SelectTimeRequest picks one of the loaded windows
type SelectTimeRequest struct {
	Start time.Time `json:"start" binding:"required"`
}

// SubmitFlowRequest submits the selected window
type SubmitFlowRequest struct {
	Public *bool `json:"public"`
}

// CopyLinkRequest reports the outcome of the browser clipboard write
type CopyLinkRequest struct {
	Failure string `json:"failure"`
}

func (h *Handler) flow(c *gin.Context) *bookingflow.Flow {
	return h.flows.Get(middleware.GetSession(c).ID())
}

// GetFlow returns the current booking flow snapshot
func (h *Handler) GetFlow(c *gin.Context) {
	response.Success(c, h.flow(c).Snapshot())
}

// OpenFlow resets the flow for a court and loads its available times
func (h *Handler) OpenFlow(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.flow.open")
	defer span.End()

	var req OpenFlowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "court_id is required and date must be YYYY-MM-DD")
		return
	}
	span.SetAttributes(attribute.Int64("court_id", req.CourtID))

	api := h.client(c)
	f := h.flow(c)
	f.Close()

	court, err := api.GetCourt(ctx, req.CourtID)
	if err != nil {
		telemetry.RecordError(span, err)
		if domain.IsNotFoundError(err) {
			err = domain.ErrInvalidCourt
		}
		h.flowError(c, err)
		return
	}

	if err := f.Open(ctx, api, court, req.Date); err != nil {
		telemetry.RecordError(span, err)
		if errors.Is(err, bookingflow.ErrStale) || domain.IsAuthError(err) || f.State() != bookingflow.StateLoadError {
			h.flowError(c, err)
			return
		}
	}
	response.Success(c, f.Snapshot())
}

// SelectTime selects a window from the loaded list
func (h *Handler) SelectTime(c *gin.Context) {
	var req SelectTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, domain.ErrNoTimeSelected)
		return
	}

	f := h.flow(c)
	if err := f.Select(req.Start); err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, f.Snapshot())
}

// SubmitFlow creates the booking. Backend failures leave the flow in
// submitError and are reported inside the snapshot.
func (h *Handler) SubmitFlow(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.flow.submit")
	defer span.End()

	var req SubmitFlowRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.BadRequest(c, "public must be true or false")
		return
	}

	f := h.flow(c)
	if req.Public != nil {
		f.SetPublic(*req.Public)
	}

	snap, err := f.Submit(ctx, h.client(c))
	if err != nil {
		telemetry.RecordError(span, err)
		if errors.Is(err, bookingflow.ErrStale) || domain.IsAuthError(err) || f.State() != bookingflow.StateSubmitError {
			h.flowError(c, err)
			return
		}
		response.Success(c, f.Snapshot())
		return
	}

	span.SetAttributes(attribute.Int64("booking_id", snap.Booking.ID))
	h.activity.Go(events.NewBookingEvent(events.BookingCreated, snap.Booking, h.currentUser(c)))
	response.Created(c, snap)
}

// CloseFlow cancels in-flight requests and resets the flow
func (h *Handler) CloseFlow(c *gin.Context) {
	f := h.flow(c)
	f.Close()
	response.Success(c, f.Snapshot())
}

// CopyLink turns the browser clipboard outcome into a notification
func (h *Handler) CopyLink(c *gin.Context) {
	var req CopyLinkRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.BadRequest(c, "failure must be a string")
		return
	}

	snap := h.flow(c).Snapshot()
	if snap.Share == nil {
		h.handleError(c, domain.ErrFlowNotOpen)
		return
	}
	response.Success(c, sharing.Copy(c.Request.Context(), sharing.ReportedClipboard{Failure: req.Failure}, snap.Share.Link))
}

// flowError answers with the envelope and drops sessions the backend rejected
func (h *Handler) flowError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrUnauthenticated) {
		h.expireSession(c)
	}
	h.handleError(c, err)
}

// bindOptionalJSON binds the body into obj. A missing or empty body leaves
// obj untouched; a body that does not parse is an error.
func bindOptionalJSON(c *gin.Context, obj interface{}) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
