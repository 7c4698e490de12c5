package rbac

import "context"

type roleKey struct{}

// WithRole stores the caller's role in ctx.
func WithRole(ctx context.Context, role Role) context.Context {
	return context.WithValue(ctx, roleKey{}, role)
}

// RoleFromContext returns the role stored by WithRole. Empty roles count as absent.
func RoleFromContext(ctx context.Context) (Role, bool) {
	role, ok := ctx.Value(roleKey{}).(Role)
	return role, ok && role != ""
}
