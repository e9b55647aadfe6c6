package apiclient

import (
	"time"

	"github.com/prohmpiriya/sportify-web/internal/domain"
)

// Wire structs mirror backend payloads; validate tags reject payloads the
// views cannot render.

type listMeta struct {
	TotalCount int `json:"total_count" validate:"gte=0"`
}

type userWire struct {
	ID       int64  `json:"id" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Name     string `json:"name"`
	Document string `json:"document"`
	Role     string `json:"role" validate:"omitempty,oneof=admin regular"`
}

func (w *userWire) toDomain() *domain.User {
	role := domain.Role(w.Role)
	if role == "" {
		role = domain.RoleRegular
	}
	return &domain.User{
		ID:       w.ID,
		Email:    w.Email,
		Name:     w.Name,
		Document: w.Document,
		Role:     role,
	}
}

type signInWire struct {
	Token string    `json:"token" validate:"required"`
	User  *userWire `json:"user" validate:"required"`
}

type userListWire struct {
	Data []*userWire `json:"data" validate:"dive,required"`
	Meta listMeta    `json:"meta"`
}

type courtWire struct {
	ID          int64   `json:"id" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	MaxPlayers  int     `json:"max_players" validate:"gte=0"`
	HourlyPrice float64 `json:"hourly_price" validate:"gte=0"`
	Status      string  `json:"status" validate:"required,oneof=open closed"`
}

func (w *courtWire) toDomain() *domain.Court {
	return &domain.Court{
		ID:          w.ID,
		Name:        w.Name,
		Category:    w.Category,
		Description: w.Description,
		MaxPlayers:  w.MaxPlayers,
		HourlyPrice: w.HourlyPrice,
		Status:      domain.CourtStatus(w.Status),
	}
}

type courtListWire struct {
	Data []*courtWire `json:"data" validate:"dive,required"`
	Meta listMeta     `json:"meta"`
}

type windowWire struct {
	Start time.Time `json:"start" validate:"required"`
	End   time.Time `json:"end" validate:"required,gtfield=Start"`
}

type availabilityWire struct {
	CourtID        int64        `json:"court_id" validate:"required"`
	Date           string       `json:"date"`
	AvailableTimes []windowWire `json:"available_times" validate:"dive"`
}

func (w *availabilityWire) toDomain() *domain.Availability {
	windows := make([]domain.TimeWindow, 0, len(w.AvailableTimes))
	for _, tw := range w.AvailableTimes {
		windows = append(windows, domain.TimeWindow{Start: tw.Start, End: tw.End})
	}
	return &domain.Availability{CourtID: w.CourtID, Date: w.Date, Windows: windows}
}

type participantWire struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email"`
	Document string `json:"document"`
	Position string `json:"position"`
}

type bookingAttributes struct {
	CourtID      int64             `json:"court_id" validate:"required"`
	StartsOn     time.Time         `json:"starts_on" validate:"required"`
	EndsOn       time.Time         `json:"ends_on"`
	Public       bool              `json:"public"`
	Status       string            `json:"status" validate:"omitempty,oneof=pending scheduled completed cancelled"`
	TotalValue   float64           `json:"total_value"`
	ShareToken   string            `json:"share_token"`
	MaxPlayers   int               `json:"max_players" validate:"gte=0"`
	Participants []participantWire `json:"participants" validate:"dive"`
}

type bookingWire struct {
	ID         int64             `json:"id" validate:"required"`
	Attributes bookingAttributes `json:"attributes"`
}

func (w *bookingWire) toDomain() *domain.Booking {
	a := w.Attributes
	participants := make([]domain.Participant, 0, len(a.Participants))
	for _, p := range a.Participants {
		participants = append(participants, domain.Participant{
			Name:     p.Name,
			Email:    p.Email,
			Document: p.Document,
			Position: domain.Position(p.Position),
		})
	}
	status := domain.BookingStatus(a.Status)
	if status == "" {
		status = domain.BookingPending
	}
	return &domain.Booking{
		ID:           w.ID,
		CourtID:      a.CourtID,
		StartsOn:     a.StartsOn,
		EndsOn:       a.EndsOn,
		Public:       a.Public,
		Status:       status,
		TotalValue:   a.TotalValue,
		ShareToken:   a.ShareToken,
		MaxPlayers:   a.MaxPlayers,
		Participants: participants,
	}
}

type bookingListWire struct {
	Data []*bookingWire `json:"data" validate:"dive,required"`
	Meta listMeta       `json:"meta"`
}
