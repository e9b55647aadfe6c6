package domain

// CourtStatus is the open/closed state of a court
type CourtStatus string

const (
	CourtOpen   CourtStatus = "open"
	CourtClosed CourtStatus = "closed"
)

// Court is a bookable sports facility
type Court struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	MaxPlayers  int         `json:"max_players"`
	HourlyPrice float64     `json:"hourly_price"`
	Status      CourtStatus `json:"status"`
}

// Bookable reports whether users may reserve the court
func (c *Court) Bookable() bool {
	return c != nil && c.Status == CourtOpen
}

// CourtInput is the admin create/update payload
type CourtInput struct {
	Name        string      `json:"name" binding:"required"`
	Category    string      `json:"category" binding:"required"`
	Description string      `json:"description"`
	MaxPlayers  int         `json:"max_players" binding:"required,min=1"`
	HourlyPrice float64     `json:"hourly_price" binding:"min=0"`
	Status      CourtStatus `json:"status" binding:"required,oneof=open closed"`
}

// CourtIndex resolves courts by id, used wherever a booking references one
type CourtIndex map[int64]*Court

// NewCourtIndex builds an index from a court list
func NewCourtIndex(courts []*Court) CourtIndex {
	idx := make(CourtIndex, len(courts))
	for _, c := range courts {
		idx[c.ID] = c
	}
	return idx
}

// Name returns the court name or a placeholder for unknown ids
func (idx CourtIndex) Name(id int64) string {
	if c, ok := idx[id]; ok {
		return c.Name
	}
	return "Unknown court"
}
