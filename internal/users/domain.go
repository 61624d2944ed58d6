package users

import "time"

// User represents a registered account. Every user holds exactly one role.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	RoleID       int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
