package users

import (
	"time"

	"github.com/tradepost/tradepost/internal/access"
)

// User represents a marketplace account. Authentication lives outside this
// service; the record only carries identity and the authorization role.
type User struct {
	ID        int64       `json:"id"`
	Username  string      `json:"username"`
	FirstName string      `json:"first_name,omitempty"`
	LastName  string      `json:"last_name,omitempty"`
	Email     *string     `json:"email,omitempty"`
	Role      access.Role `json:"role"`
	Age       *int        `json:"age,omitempty"`
	Locations []Location  `json:"locations"`
	CreatedAt time.Time   `json:"created_at"`
}

// Location is a named place associated with users, used as a searchable
// attribute when filtering listings by the author's whereabouts.
type Location struct {
	ID   int64    `json:"id"`
	Name string   `json:"name"`
	Lat  *float64 `json:"lat,omitempty"`
	Lng  *float64 `json:"lng,omitempty"`
}

// Principal converts the stored account into an access principal.
func (u *User) Principal() access.Principal {
	return access.Principal{ID: u.ID, Role: u.Role}
}
