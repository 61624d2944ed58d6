package shared

import "context"

// Identity describes the authenticated actor for one request. It is threaded
// explicitly through context by the auth middleware; nothing reads ambient
// global state.
type Identity struct {
	UserID       int64
	Username     string
	RoleID       int64
	RoleName     string
	Capabilities CapabilitySet
}

// Can reports whether the actor holds the capability.
func (id *Identity) Can(c Capability) bool {
	return id != nil && id.Capabilities.Has(c)
}

type identityContextKey struct{}

// ContextWithIdentity stores the resolved identity in context.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the identity from context, nil when the
// request carried no valid credential.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey{}).(*Identity)
	return id
}
