package events

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/prohmpiriya/sportify-web/internal/domain"
)

// Type is the kind of activity event
type Type string

const (
	BookingCreated    Type = "booking.created"
	BookingDeleted    Type = "booking.deleted"
	CourtCreated      Type = "court.created"
	CourtUpdated      Type = "court.updated"
	CourtDeleted      Type = "court.deleted"
	ParticipantJoined Type = "participant.joined"
)

// Event is the payload written to the activity topic
type Event struct {
	ID         string      `json:"event_id"`
	Type       Type        `json:"event_type"`
	OccurredAt time.Time   `json:"occurred_at"`
	ActorID    int64       `json:"actor_id,omitempty"`
	BookingID  int64       `json:"booking_id,omitempty"`
	CourtID    int64       `json:"court_id,omitempty"`
	Data       interface{} `json:"data,omitempty"`
}

// Key partitions events of one booking or court together
func (e *Event) Key() string {
	if e.BookingID != 0 {
		return fmt.Sprintf("booking:%d", e.BookingID)
	}
	return fmt.Sprintf("court:%d", e.CourtID)
}

func newEvent(t Type, actor *domain.User) *Event {
	e := &Event{
		ID:         uuid.New().String(),
		Type:       t,
		OccurredAt: time.Now().UTC(),
	}
	if actor != nil {
		e.ActorID = actor.ID
	}
	return e
}

// NewBookingEvent builds a booking.created or booking.deleted event
func NewBookingEvent(t Type, b *domain.Booking, actor *domain.User) *Event {
	e := newEvent(t, actor)
	e.BookingID = b.ID
	e.CourtID = b.CourtID
	e.Data = map[string]interface{}{
		"starts_on": b.StartsOn,
		"public":    b.Public,
		"status":    b.Status,
	}
	return e
}

// NewCourtEvent builds a court.* event
func NewCourtEvent(t Type, c *domain.Court, actor *domain.User) *Event {
	e := newEvent(t, actor)
	e.CourtID = c.ID
	e.Data = map[string]interface{}{
		"name":   c.Name,
		"status": c.Status,
	}
	return e
}

// NewParticipantEvent builds a participant.joined event
func NewParticipantEvent(b *domain.Booking, nickname string, role domain.Position) *Event {
	e := newEvent(ParticipantJoined, nil)
	e.BookingID = b.ID
	e.CourtID = b.CourtID
	e.Data = map[string]interface{}{
		"nickname":     nickname,
		"role":         role,
		"participants": len(b.Participants),
	}
	return e
}
