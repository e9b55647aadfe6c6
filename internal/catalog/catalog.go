// Package catalog lists courts page by page and the public games feed.
package catalog

import (
	"context"
	"fmt"

	"github.com/prohmpiriya/sportify-web/internal/apiclient"
	"github.com/prohmpiriya/sportify-web/internal/domain"
)

// DefaultLimit is the catalog page size
const DefaultLimit = 10

// API is the slice of the backend client the catalog needs
type API interface {
	ListCourts(ctx context.Context, p apiclient.PageRequest) ([]*domain.Court, domain.Page, error)
	PublicBookings(ctx context.Context) ([]*domain.Booking, error)
}

// Result is one rendered catalog page
type Result struct {
	Courts []*domain.Court
	Page   domain.Page
}

// TotalPages returns ceil(total/limit)
func (r *Result) TotalPages() int {
	return r.Page.TotalPages()
}

// HasNext reports whether a next page link is shown
func (r *Result) HasNext() bool {
	return r.Page.HasNext()
}

// HasPrev reports whether a previous page link is shown
func (r *Result) HasPrev() bool {
	return r.Page.HasPrev()
}

// Pages lists the page numbers for the pager
func (r *Result) Pages() []int {
	total := r.TotalPages()
	pages := make([]int, total)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}

// Load fetches the requested page. A page past the end is clamped to the
// last page once the backend reports the total, which costs one extra call.
func Load(ctx context.Context, api API, page, limit int) (*Result, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if page < 1 {
		page = 1
	}

	courts, meta, err := api.ListCourts(ctx, apiclient.PageRequest{Page: page, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("load catalog page %d: %w", page, err)
	}

	if clamped := meta.Clamp(page); clamped != page {
		page = clamped
		courts, meta, err = api.ListCourts(ctx, apiclient.PageRequest{Page: page, Limit: limit})
		if err != nil {
			return nil, fmt.Errorf("load catalog page %d: %w", page, err)
		}
	}

	meta.Page = page
	meta.Limit = limit
	return &Result{Courts: courts, Page: meta}, nil
}

// Game is a public booking as shown in the feed
type Game struct {
	Booking   *domain.Booking
	CourtName string
	SpotsLeft int
}

// PublicGames loads the public feed and resolves court names through idx
func PublicGames(ctx context.Context, api API, idx domain.CourtIndex) ([]Game, error) {
	bookings, err := api.PublicBookings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load public games: %w", err)
	}

	games := make([]Game, 0, len(bookings))
	for _, b := range bookings {
		if b.Status == domain.BookingCancelled || b.Status == domain.BookingCompleted {
			continue
		}
		games = append(games, Game{
			Booking:   b,
			CourtName: idx.Name(b.CourtID),
			SpotsLeft: b.SpotsLeft(),
		})
	}
	return games, nil
}
