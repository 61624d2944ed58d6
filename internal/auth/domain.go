// Package auth resolves credentials into verified identities: password login
// issues an opaque bearer token, and the middleware turns a presented token
// back into the acting user's identity and capability set.
package auth

import "time"

// Account is the credential-bearing projection of a user.
type Account struct {
	ID           int64
	Username     string
	PasswordHash string
	RoleID       int64
	CreatedAt    time.Time
}
