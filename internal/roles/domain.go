package roles

import (
	"time"

	"github.com/wardenhq/warden/internal/shared"
)

// Role represents a named privilege grouping. Tier orders privilege: tier 1
// is the most restricted, tier 3 administers policy.
type Role struct {
	ID        int64
	Name      string
	Tier      int
	CreatedAt time.Time
}

// Seed role names, created idempotently before the service accepts traffic.
const (
	NameStaff      = "staff"
	NameSupervisor = "supervisor"
	NameAdmin      = "admin"
)

// Capabilities resolves the role's capability set. Computed at read time so
// no caller ever compares raw role ids.
func (r Role) Capabilities() shared.CapabilitySet {
	return shared.CapabilitiesForTier(r.Tier)
}
