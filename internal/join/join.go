// Package join drives the page invitees land on from a share link.
package join

import (
	"context"
	"fmt"
	"strings"

	"github.com/prohmpiriya/sportify-web/internal/apiclient"
	"github.com/prohmpiriya/sportify-web/internal/domain"
	"github.com/prohmpiriya/sportify-web/internal/view"
)

// API is the slice of the backend client the join page needs
type API interface {
	GetBooking(ctx context.Context, id int64, token string) (*domain.Booking, error)
	GetCourt(ctx context.Context, id int64) (*domain.Court, error)
	JoinBooking(ctx context.Context, req apiclient.JoinRequest) (*domain.Booking, error)
}

// Form is the submitted join form
type Form struct {
	Nickname string `form:"nickname" json:"nickname"`
	Role     string `form:"role" json:"role"`
}

// Page is the state of one join page render
type Page struct {
	BookingID    int64
	Token        string
	Booking      *domain.Booking
	Court        *domain.Court
	NotFound     bool
	Joined       bool
	Form         Form
	Notification *view.Notification
	Positions    []domain.Position
}

// CourtName returns the resolved court name
func (p *Page) CourtName() string {
	if p.Court == nil {
		return "Unknown court"
	}
	return p.Court.Name
}

// Load fetches the booking behind a share link. An unknown booking or a bad
// token yields a NotFound page and an error classified by
// domain.IsNotFoundError.
func Load(ctx context.Context, api API, id int64, token string) (*Page, error) {
	p := &Page{BookingID: id, Token: token, Positions: domain.Positions}

	booking, err := api.GetBooking(ctx, id, token)
	if err != nil {
		if domain.IsNotFoundError(err) {
			p.NotFound = true
		} else {
			p.Notification = view.FromError(err)
		}
		return p, err
	}
	p.Booking = booking

	// the court name is decoration; the page works without it
	if court, err := api.GetCourt(ctx, booking.CourtID); err == nil {
		p.Court = court
	}
	return p, nil
}

// Validate checks the form before any network call
func (f Form) Validate() (string, domain.Position, error) {
	nickname := strings.TrimSpace(f.Nickname)
	if nickname == "" {
		return "", "", domain.ErrNicknameRequired
	}
	role, err := domain.ParsePosition(f.Role)
	if err != nil {
		return "", "", err
	}
	return nickname, role, nil
}

// Submit validates the form, runs the advisory capacity and duplicate
// checks against the loaded participants, then posts the join. The
// participant list is replaced with the backend answer.
func (p *Page) Submit(ctx context.Context, api API, form Form) error {
	p.Form = form
	if p.Booking == nil {
		return domain.ErrNotFound
	}

	nickname, role, err := form.Validate()
	if err != nil {
		p.Notification = view.FromError(err)
		return err
	}

	if err := p.Booking.CanAccept(nickname); err != nil {
		p.Notification = view.FromError(err)
		return err
	}

	updated, err := api.JoinBooking(ctx, apiclient.JoinRequest{
		ShareToken: p.Token,
		Nickname:   nickname,
		Role:       role,
	})
	if err != nil {
		p.Notification = view.FromError(err)
		return fmt.Errorf("join booking %d: %w", p.BookingID, err)
	}
	if updated.ID != p.Booking.ID {
		err := fmt.Errorf("%w: joined booking %d, expected %d", domain.ErrMalformedResponse, updated.ID, p.Booking.ID)
		p.Notification = view.FromError(err)
		return err
	}

	p.Booking = updated
	p.Joined = true
	p.Form = Form{}
	p.Notification = view.Success(fmt.Sprintf("You're in, %s!", nickname))
	return nil
}
