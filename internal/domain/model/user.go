package model

import "time"

type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Session is an authenticated identity plus its bearer credential.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.User.Role == RoleAdmin
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Profile is the registration payload.
type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}
