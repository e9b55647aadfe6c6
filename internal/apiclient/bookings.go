package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prohmpiriya/sportify-web/internal/domain"
)

// BookingFilter narrows the booking list
type BookingFilter struct {
	PageRequest
	PublicOnly bool
	CourtID    int64
}

func (f BookingFilter) values() url.Values {
	q := f.PageRequest.values()
	if f.PublicOnly {
		q.Set("filter[public_eq]", "true")
	}
	if f.CourtID > 0 {
		q.Set("filter[court_id_eq]", fmt.Sprint(f.CourtID))
	}
	return q
}

// CreateBookingRequest is the reservation payload
type CreateBookingRequest struct {
	StartsOn time.Time `json:"starts_on"`
	CourtID  int64     `json:"court_id"`
	Public   bool      `json:"public"`
}

// JoinRequest registers a participant through a share token
type JoinRequest struct {
	ShareToken string          `json:"share_token"`
	Nickname   string          `json:"nickname"`
	Role       domain.Position `json:"role"`
}

// AvailableTimes returns the free windows for a court; date is YYYY-MM-DD
// and may be empty for the backend default day
func (c *Client) AvailableTimes(ctx context.Context, courtID int64, date string) (*domain.Availability, error) {
	q := url.Values{}
	if date != "" {
		q.Set("date", date)
	}

	var out availabilityWire
	req := request{
		method: http.MethodGet,
		path:   fmt.Sprintf("/api/v1/bookings/%d/available_times", courtID),
		query:  q,
		auth:   authRequired,
	}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, fmt.Errorf("available times for court %d: %w", courtID, err)
	}
	return out.toDomain(), nil
}

// ListBookings returns one page of bookings
func (c *Client) ListBookings(ctx context.Context, f BookingFilter) ([]*domain.Booking, domain.Page, error) {
	auth := authRequired
	if f.PublicOnly {
		auth = authOptional
	}

	var out bookingListWire
	req := request{method: http.MethodGet, path: "/api/v1/bookings", query: f.values(), auth: auth}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, domain.Page{}, fmt.Errorf("list bookings: %w", err)
	}

	bookings := make([]*domain.Booking, 0, len(out.Data))
	for _, w := range out.Data {
		bookings = append(bookings, w.toDomain())
	}
	return bookings, f.page(out.Meta.TotalCount), nil
}

// PublicBookings returns the public games feed
func (c *Client) PublicBookings(ctx context.Context) ([]*domain.Booking, error) {
	bookings, _, err := c.ListBookings(ctx, BookingFilter{PublicOnly: true})
	return bookings, err
}

// GetBooking fetches a booking through its share token
func (c *Client) GetBooking(ctx context.Context, id int64, token string) (*domain.Booking, error) {
	if strings.TrimSpace(token) == "" {
		return nil, domain.ErrInvalidShareToken
	}

	var out bookingWire
	req := request{
		method: http.MethodGet,
		path:   bookingPath(id),
		query:  url.Values{"token": {token}},
		auth:   authOptional,
	}
	if err := c.do(ctx, req, &out); err != nil {
		if domain.IsNotFoundError(err) {
			return nil, fmt.Errorf("get booking %d: %w", id, domain.ErrInvalidShareToken)
		}
		return nil, fmt.Errorf("get booking %d: %w", id, err)
	}
	return out.toDomain(), nil
}

// CreateBooking reserves a slot; the result carries the share token
func (c *Client) CreateBooking(ctx context.Context, in CreateBookingRequest) (*domain.Booking, error) {
	if in.CourtID <= 0 {
		return nil, domain.ErrInvalidCourt
	}
	if in.StartsOn.IsZero() {
		return nil, domain.ErrNoTimeSelected
	}

	var out bookingWire
	req := request{method: http.MethodPost, path: "/api/v1/bookings", body: in, auth: authRequired}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	return out.toDomain(), nil
}

// DeleteBooking cancels a booking
func (c *Client) DeleteBooking(ctx context.Context, id int64) error {
	req := request{method: http.MethodDelete, path: bookingPath(id), auth: authRequired}
	if err := c.do(ctx, req, nil); err != nil {
		return fmt.Errorf("delete booking %d: %w", id, err)
	}
	return nil
}

// JoinBooking adds a participant and returns the booking as the backend
// now sees it
func (c *Client) JoinBooking(ctx context.Context, in JoinRequest) (*domain.Booking, error) {
	var out bookingWire
	req := request{method: http.MethodPost, path: "/api/v1/participants", body: in, auth: authOptional}
	if err := c.do(ctx, req, &out); err != nil {
		if domain.IsNotFoundError(err) {
			return nil, fmt.Errorf("join booking: %w", domain.ErrInvalidShareToken)
		}
		return nil, fmt.Errorf("join booking: %w", err)
	}
	return out.toDomain(), nil
}

func bookingPath(id int64) string {
	return fmt.Sprintf("/api/v1/bookings/%d", id)
}
