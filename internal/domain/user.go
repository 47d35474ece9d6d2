package domain

import "time"

// Role is the authorization claim carried by an authenticated user.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// ParseRole maps a raw claim to a Role; anything unrecognised grants no privilege.
func ParseRole(raw string) Role {
	if raw == string(RoleAdmin) {
		return RoleAdmin
	}
	return RoleCustomer
}

type User struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	Role           Role       `json:"role"`
	EmailConfirmed bool       `json:"email_confirmed"`
	CreatedAt      time.Time  `json:"created_at"`
	LastSignInAt   *time.Time `json:"last_sign_in_at,omitempty"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Session is what a successful sign-in yields.
type Session struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	User        User   `json:"user"`
}
