// Package bookingflow implements the reserve-a-slot sequence: load the free
// windows of a court, pick one, submit, and hand out a share link.
package bookingflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prohmpiriya/sportify-web/internal/apiclient"
	"github.com/prohmpiriya/sportify-web/internal/domain"
	"github.com/prohmpiriya/sportify-web/internal/sharing"
	"github.com/prohmpiriya/sportify-web/internal/view"
)

// State is a step of the booking flow
type State string

const (
	StateIdle         State = "idle"
	StateLoadingTimes State = "loadingTimes"
	StateTimesLoaded  State = "timesLoaded"
	StateLoadError    State = "loadError"
	StateSelecting    State = "selecting"
	StateSubmitting   State = "submitting"
	StateSuccess      State = "success"
	StateSubmitError  State = "submitError"
)

var (
	// ErrStale is returned when a newer Open or Close superseded the request
	ErrStale = errors.New("request superseded")
	// ErrBusy is returned while a request of the flow is in flight
	ErrBusy = errors.New("a request is already in progress")
)

// API is the slice of the backend client the flow needs
type API interface {
	AvailableTimes(ctx context.Context, courtID int64, date string) (*domain.Availability, error)
	CreateBooking(ctx context.Context, req apiclient.CreateBookingRequest) (*domain.Booking, error)
}

// Snapshot is an immutable copy of the flow for rendering
type Snapshot struct {
	State        State               `json:"state"`
	Court        *domain.Court       `json:"court,omitempty"`
	Date         string              `json:"date,omitempty"`
	Times        []domain.TimeWindow `json:"times"`
	Selected     *domain.TimeWindow  `json:"selected,omitempty"`
	Public       bool                `json:"public"`
	LoadError    string              `json:"load_error,omitempty"`
	Notification *view.Notification  `json:"notification,omitempty"`
	Booking      *domain.Booking     `json:"booking,omitempty"`
	Share        *sharing.Share      `json:"share,omitempty"`
}

// CanSubmit reports whether the submit button is enabled
func (s Snapshot) CanSubmit() bool {
	return s.Selected != nil && (s.State == StateSelecting || s.State == StateSubmitError)
}

// Flow is one user's booking modal
type Flow struct {
	origin string
	guard  view.Guard

	mu           sync.Mutex
	state        State
	court        *domain.Court
	date         string
	times        []domain.TimeWindow
	selected     *domain.TimeWindow
	public       bool
	loadErr      string
	notification *view.Notification
	booking      *domain.Booking
	share        *sharing.Share
	lastUsed     time.Time
}

// New creates an idle flow; origin prefixes share links
func New(origin string) *Flow {
	return &Flow{origin: origin, state: StateIdle, lastUsed: time.Now()}
}

// Open resets the flow for court and loads its available windows. The reset
// happens even when court is rejected.
func (f *Flow) Open(ctx context.Context, api API, court *domain.Court, date string) error {
	f.mu.Lock()
	f.resetLocked()
	f.touchLocked()
	if court == nil || court.ID <= 0 {
		f.mu.Unlock()
		return domain.ErrInvalidCourt
	}
	if !court.Bookable() {
		f.mu.Unlock()
		return domain.ErrCourtClosed
	}

	f.state = StateLoadingTimes
	f.court = court
	f.date = date
	f.touchLocked()
	reqCtx, gen := f.guard.Begin(ctx)
	f.mu.Unlock()

	avail, err := api.AvailableTimes(reqCtx, court.ID, date)

	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.guard.Current(gen) {
		return ErrStale
	}
	f.guard.Done(gen)
	f.touchLocked()

	if err != nil {
		f.state = StateLoadError
		f.loadErr = domain.UserMessage(err)
		return fmt.Errorf("load available times: %w", err)
	}
	if avail.CourtID != court.ID {
		f.state = StateLoadError
		f.loadErr = domain.UserMessage(domain.ErrMalformedResponse)
		return fmt.Errorf("load available times: %w: court %d answered for %d", domain.ErrMalformedResponse, avail.CourtID, court.ID)
	}

	f.times = append([]domain.TimeWindow(nil), avail.Windows...)
	if avail.Date != "" {
		f.date = avail.Date
	}
	f.state = StateTimesLoaded
	return nil
}

// Select picks the loaded window starting at start
func (f *Flow) Select(start time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touchLocked()

	switch f.state {
	case StateTimesLoaded, StateSelecting, StateSubmitError:
	case StateSubmitting, StateLoadingTimes:
		return ErrBusy
	default:
		return domain.ErrFlowNotOpen
	}

	for i := range f.times {
		if f.times[i].Start.Equal(start) {
			w := f.times[i]
			f.selected = &w
			f.state = StateSelecting
			f.notification = nil
			return nil
		}
	}
	return domain.ErrTimeNotAvailable
}

// SetPublic toggles whether the booking shows up in the public feed
func (f *Flow) SetPublic(public bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.public = public
	f.touchLocked()
}

// Submit creates the booking for the selected window. Without a selection
// it fails before any network call. On failure the selection is kept so
// the user can retry.
func (f *Flow) Submit(ctx context.Context, api API) (*Snapshot, error) {
	f.mu.Lock()
	f.touchLocked()
	if f.selected == nil {
		f.mu.Unlock()
		return nil, domain.ErrNoTimeSelected
	}
	switch f.state {
	case StateSelecting, StateSubmitError:
	case StateSubmitting:
		f.mu.Unlock()
		return nil, ErrBusy
	default:
		f.mu.Unlock()
		return nil, domain.ErrFlowNotOpen
	}

	req := apiclient.CreateBookingRequest{
		StartsOn: f.selected.Start,
		CourtID:  f.court.ID,
		Public:   f.public,
	}
	courtName := f.court.Name
	f.state = StateSubmitting
	f.notification = nil
	reqCtx, gen := f.guard.Begin(ctx)
	f.mu.Unlock()

	booking, err := api.CreateBooking(reqCtx, req)
	if err == nil && booking.ShareToken == "" {
		err = fmt.Errorf("%w: booking %d has no share token", domain.ErrMalformedResponse, booking.ID)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.guard.Current(gen) {
		return nil, ErrStale
	}
	f.guard.Done(gen)
	f.touchLocked()

	if err != nil {
		f.state = StateSubmitError
		f.notification = view.FromError(err)
		return nil, fmt.Errorf("submit booking: %w", err)
	}

	f.booking = booking
	f.share = sharing.New(f.origin, booking.ID, booking.ShareToken, courtName, booking.StartsOn)
	f.state = StateSuccess
	f.notification = view.Success("Booking confirmed!")

	snap := f.snapshotLocked()
	return &snap, nil
}

// Close cancels any in-flight request and clears everything
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetLocked()
	f.touchLocked()
}

// Snapshot returns a copy of the current state
func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

// State returns the current state
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Flow) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:        f.state,
		Date:         f.date,
		Times:        append([]domain.TimeWindow{}, f.times...),
		Public:       f.public,
		LoadError:    f.loadErr,
		Notification: f.notification,
	}
	if f.court != nil {
		c := *f.court
		snap.Court = &c
	}
	if f.selected != nil {
		w := *f.selected
		snap.Selected = &w
	}
	if f.booking != nil {
		b := *f.booking
		b.Participants = append([]domain.Participant(nil), f.booking.Participants...)
		snap.Booking = &b
	}
	if f.share != nil {
		s := *f.share
		snap.Share = &s
	}
	return snap
}

func (f *Flow) resetLocked() {
	f.guard.Reset()
	f.state = StateIdle
	f.court = nil
	f.date = ""
	f.times = nil
	f.selected = nil
	f.public = false
	f.loadErr = ""
	f.notification = nil
	f.booking = nil
	f.share = nil
}

func (f *Flow) touchLocked() {
	f.lastUsed = time.Now()
}

// idleBefore reports whether the flow was last used before cutoff and has
// no request in flight
func (f *Flow) idleBefore(cutoff time.Time) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateLoadingTimes || f.state == StateSubmitting {
		return false
	}
	return f.lastUsed.Before(cutoff)
}
