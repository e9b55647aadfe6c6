package admin

import (
	"context"
	"fmt"

	"github.com/prohmpiriya/sportify-web/internal/apiclient"
	"github.com/prohmpiriya/sportify-web/internal/domain"
	"github.com/prohmpiriya/sportify-web/internal/view"
)

// BookingsAPI is the slice of the backend client the bookings view needs
type BookingsAPI interface {
	ListCourts(ctx context.Context, p apiclient.PageRequest) ([]*domain.Court, domain.Page, error)
	ListBookings(ctx context.Context, f apiclient.BookingFilter) ([]*domain.Booking, domain.Page, error)
	DeleteBooking(ctx context.Context, id int64) error
}

// courtLookupLimit is how many courts are fetched to resolve booking rows
const courtLookupLimit = 100

// BookingRow is a booking with its court resolved
type BookingRow struct {
	Booking   *domain.Booking `json:"booking"`
	CourtName string          `json:"court_name"`
}

// BookingsView is the admin reservation table
type BookingsView struct {
	api          BookingsAPI
	bookings     []*domain.Booking
	courts       domain.CourtIndex
	page         domain.Page
	notification *view.Notification
}

// NewBookingsView creates an empty bookings view
func NewBookingsView(api BookingsAPI) *BookingsView {
	return &BookingsView{api: api, courts: domain.CourtIndex{}}
}

// Load fetches the courts lookup and one page of bookings
func (v *BookingsView) Load(ctx context.Context, f apiclient.BookingFilter) error {
	courts, _, err := v.api.ListCourts(ctx, apiclient.PageRequest{Page: 1, Limit: courtLookupLimit})
	if err != nil {
		v.notification = view.FromError(err)
		return fmt.Errorf("load court lookup: %w", err)
	}

	bookings, meta, err := v.api.ListBookings(ctx, f)
	if err != nil {
		v.notification = view.FromError(err)
		return fmt.Errorf("load bookings: %w", err)
	}

	v.courts = domain.NewCourtIndex(courts)
	v.bookings = bookings
	meta.Page = f.Page
	meta.Limit = f.Limit
	v.page = meta
	return nil
}

// Delete cancels a booking and drops it from the list once confirmed
func (v *BookingsView) Delete(ctx context.Context, id int64) error {
	if err := v.api.DeleteBooking(ctx, id); err != nil {
		v.notification = view.FromError(err)
		return err
	}

	kept := v.bookings[:0]
	for _, b := range v.bookings {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	v.bookings = kept
	if v.page.TotalCount > 0 {
		v.page.TotalCount--
	}
	v.notification = view.Success("Booking deleted")
	return nil
}

// Rows returns the bookings with court names resolved by CourtID
func (v *BookingsView) Rows() []BookingRow {
	rows := make([]BookingRow, 0, len(v.bookings))
	for _, b := range v.bookings {
		rows = append(rows, BookingRow{Booking: b, CourtName: v.courts.Name(b.CourtID)})
	}
	return rows
}

// Page returns the pagination of the loaded list
func (v *BookingsView) Page() domain.Page {
	return v.page
}

// Notification returns the outcome of the last action
func (v *BookingsView) Notification() *view.Notification {
	return v.notification
}
