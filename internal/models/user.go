package models

import "time"

// User roles.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User represents a staff account.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	PassHash  string    `json:"-"` // Not serialized
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// PasswordReset is a one-hour recovery token emailed to the shop owner.
type PasswordReset struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
