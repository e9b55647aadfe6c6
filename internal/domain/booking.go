package domain

import (
	"strings"
	"time"
)

// BookingStatus is the backend-managed booking lifecycle state
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingScheduled BookingStatus = "scheduled"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// TimeWindow is an available slot returned by the backend
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Equal compares windows by instant
func (w TimeWindow) Equal(o TimeWindow) bool {
	return w.Start.Equal(o.Start) && w.End.Equal(o.End)
}

// Availability is the available-times answer for one court and day
type Availability struct {
	CourtID int64        `json:"court_id"`
	Date    string       `json:"date"`
	Windows []TimeWindow `json:"available_times"`
}

// Position is the role a participant takes in the game
type Position string

const (
	PositionGoalkeeper Position = "goalkeeper"
	PositionDefender   Position = "defender"
	PositionMidfielder Position = "midfielder"
	PositionForward    Position = "forward"
	PositionAny        Position = "any"
)

// Positions lists the roles offered on the join form
var Positions = []Position{PositionGoalkeeper, PositionDefender, PositionMidfielder, PositionForward, PositionAny}

// ParsePosition validates a submitted role
func ParsePosition(s string) (Position, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return "", ErrRoleRequired
	}
	for _, p := range Positions {
		if string(p) == s {
			return p, nil
		}
	}
	return "", ErrInvalidRole
}

// Participant is a player attached to a booking
type Participant struct {
	Name     string   `json:"name"`
	Email    string   `json:"email,omitempty"`
	Document string   `json:"document,omitempty"`
	Position Position `json:"position,omitempty"`
}

// Booking is a court reservation. The court is referenced by id only.
type Booking struct {
	ID           int64         `json:"id"`
	CourtID      int64         `json:"court_id"`
	StartsOn     time.Time     `json:"starts_on"`
	EndsOn       time.Time     `json:"ends_on"`
	Public       bool          `json:"public"`
	Status       BookingStatus `json:"status"`
	TotalValue   float64       `json:"total_value"`
	ShareToken   string        `json:"share_token,omitempty"`
	MaxPlayers   int           `json:"max_players"`
	Participants []Participant `json:"participants"`
}

// Full reports whether the participant list reached capacity
func (b *Booking) Full() bool {
	return b.MaxPlayers > 0 && len(b.Participants) >= b.MaxPlayers
}

// HasParticipant matches names case-insensitively, ignoring surrounding spaces
func (b *Booking) HasParticipant(name string) bool {
	name = strings.TrimSpace(name)
	for _, p := range b.Participants {
		if strings.EqualFold(strings.TrimSpace(p.Name), name) {
			return true
		}
	}
	return false
}

// CanAccept runs the advisory capacity and duplicate checks for a join.
// The backend performs the authoritative ones.
func (b *Booking) CanAccept(name string) error {
	if b.Full() {
		return ErrBookingFull
	}
	if b.HasParticipant(name) {
		return ErrAlreadyJoined
	}
	return nil
}

// SpotsLeft returns remaining capacity, -1 when capacity is unknown
func (b *Booking) SpotsLeft() int {
	if b.MaxPlayers <= 0 {
		return -1
	}
	left := b.MaxPlayers - len(b.Participants)
	if left < 0 {
		return 0
	}
	return left
}
