package shared

// Capability is an administrative ability derived from a role's tier.
// Gated operations test capability membership instead of comparing raw
// role ids, so the policy lives in exactly one table.
type Capability string

const (
	// CapViewPolicy allows reading permissions and role assignments.
	CapViewPolicy Capability = "policy.view"
	// CapMutatePolicy allows attaching permissions to roles.
	CapMutatePolicy Capability = "policy.mutate"
	// CapAssignRole allows changing a user's role.
	CapAssignRole Capability = "role.assign"
	// CapViewAudit allows querying the audit log.
	CapViewAudit Capability = "audit.view"
)

// Role tiers. Tier 1 is always the most restricted; tier 3 administers policy.
const (
	TierRestricted = 1
	TierElevated   = 2
	TierAdmin      = 3
)

// CapabilitySet is an immutable capability membership set.
type CapabilitySet map[Capability]struct{}

// Has reports whether the capability is present.
func (s CapabilitySet) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

// CapabilitiesForTier computes the capability set for a role tier. It is
// called once when a role is read; callers never branch on the tier again.
func CapabilitiesForTier(tier int) CapabilitySet {
	set := CapabilitySet{}
	if tier >= TierElevated {
		set[CapViewPolicy] = struct{}{}
		set[CapAssignRole] = struct{}{}
	}
	if tier >= TierAdmin {
		set[CapMutatePolicy] = struct{}{}
		set[CapViewAudit] = struct{}{}
	}
	return set
}
