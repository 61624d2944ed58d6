// Package rbac implements the authorization core: permissions, their
// attachment to roles, and the Allow/Deny decision engine.
package rbac

import "time"

// Permission is one grantable capability: an (action, resource) pair.
type Permission struct {
	ID        int64
	Action    string
	Resource  string
	CreatedAt time.Time
}

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  string
}

// Decision reasons.
const (
	ReasonGranted      = "Access granted"
	ReasonDenied       = "Access denied"
	ReasonUserNotFound = "User not found"
)
