// Package requestctx carries the authenticated caller identity through
// request context. Callers that need an authorization decision receive an
// explicit Principal rather than reading ambient session state.
package requestctx

import "context"

// Role describes the capability level of an authenticated caller.
type Role string

const (
	// RoleMember is a regular tenant member.
	RoleMember Role = "member"
	// RoleCoach can review assessments and approve broadcasts.
	RoleCoach Role = "coach"
	// RoleAdmin is the designated platform administrator.
	RoleAdmin Role = "admin"
)

// Principal identifies the authenticated caller and tenant for one request.
type Principal struct {
	UserID   string
	TenantID string
	Role     Role
}

// IsAdmin reports whether the principal carries the admin capability.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanApprove reports whether the principal may approve or reject broadcasts.
func (p Principal) CanApprove() bool {
	return p.Role == RoleAdmin || p.Role == RoleCoach
}

// principalContextKey is the context key for authenticated caller identity.
type principalContextKey struct{}

// WithPrincipal stores a caller principal in context.
func WithPrincipal(ctx context.Context, principal Principal) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, principalContextKey{}, principal)
}

// PrincipalFromContext returns the principal stored in context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	value, ok := ctx.Value(principalContextKey{}).(Principal)
	return value, ok
}
