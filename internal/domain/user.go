package domain

// Role separates administrators from regular players
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleRegular Role = "regular"
)

// User is the authenticated account
type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Document string `json:"document,omitempty"`
	Role     Role   `json:"role"`
}

// IsAdmin reports whether the user may open the admin views
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
