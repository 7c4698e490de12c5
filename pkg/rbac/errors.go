package rbac

import "errors"

// Domain errors for RBAC operations.
var (
	// ErrInvalidRole is returned when a role is not part of the catalog.
	ErrInvalidRole = errors.New("rbac.invalid_role")

	// ErrInvalidPermission is returned when a permission string is not "area.capability"
	// or names an unknown area or capability.
	ErrInvalidPermission = errors.New("rbac.invalid_permission")

	// ErrIncompleteMatrix is returned when a role's permission map does not
	// enumerate every area and capability.
	ErrIncompleteMatrix = errors.New("rbac.incomplete_matrix")

	// ErrDuplicateRole is returned when a catalog lists the same role twice.
	ErrDuplicateRole = errors.New("rbac.duplicate_role")
)
