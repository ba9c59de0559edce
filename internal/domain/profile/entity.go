package profile

import "time"

// ID identifier type
type ID string

// Profile is an internal user. OpenID is the identity provider's stable
// subject; Email is unique and doubles as the anonymous marker.
type Profile struct {
	ID        ID        `json:"id"`
	OpenID    string    `json:"open_id,omitempty"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Identity is the resolved owner of an inspection.
type Identity struct {
	UserID    ID
	Anonymous bool
}
