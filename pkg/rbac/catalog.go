package rbac

import (
	"errors"
	"fmt"
)

// knownRoles is the closed set of roles a catalog may define.
var knownRoles = map[Role]struct{}{
	RoleAdmin:                 {},
	RoleRegionalSupervisor:    {},
	RoleDistrictHealthOfficer: {},
	RoleFacilityManager:       {},
	RoleVillageHealthWorker:   {},
}

// Catalog is the read-only source of truth for roles and their permission maps.
// It is immutable after construction and safe for concurrent use.
type Catalog struct {
	configs []RoleConfig
	index   map[Role]int
}

var defaultCatalog = mustCatalog(builtinRoles())

// Default returns the built-in catalog.
func Default() *Catalog {
	return defaultCatalog
}

// NewCatalog builds a catalog from role configs, keeping their order.
// Every config must name a known role and enumerate every area with exactly
// that area's capability set.
func NewCatalog(configs []RoleConfig) (*Catalog, error) {
	c := &Catalog{
		configs: make([]RoleConfig, 0, len(configs)),
		index:   make(map[Role]int, len(configs)),
	}

	for _, cfg := range configs {
		if _, ok := knownRoles[cfg.Role]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRole, cfg.Role)
		}
		if _, dup := c.index[cfg.Role]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateRole, cfg.Role)
		}
		if err := validatePermissionMap(cfg.Permissions); err != nil {
			return nil, errors.Join(err, fmt.Errorf("role %q", cfg.Role))
		}
		c.index[cfg.Role] = len(c.configs)
		c.configs = append(c.configs, cfg.clone())
	}

	return c, nil
}

func mustCatalog(configs []RoleConfig) *Catalog {
	c, err := NewCatalog(configs)
	if err != nil {
		panic(fmt.Sprintf("rbac: invalid built-in catalog: %v", err))
	}
	return c
}

// validatePermissionMap checks that the map enumerates every area and exactly
// the capabilities defined for it.
func validatePermissionMap(m PermissionMap) error {
	if len(m) != len(areas) {
		return fmt.Errorf("%w: expected %d areas, got %d", ErrIncompleteMatrix, len(areas), len(m))
	}
	for _, area := range areas {
		caps, ok := m[area]
		if !ok {
			return fmt.Errorf("%w: missing area %q", ErrIncompleteMatrix, area)
		}
		want := areaCapabilities[area]
		if len(caps) != len(want) {
			return fmt.Errorf("%w: area %q expects %d capabilities, got %d", ErrIncompleteMatrix, area, len(want), len(caps))
		}
		for _, capability := range want {
			if _, ok := caps[capability]; !ok {
				return fmt.Errorf("%w: area %q missing capability %q", ErrIncompleteMatrix, area, capability)
			}
		}
	}
	return nil
}

// List returns every role config in catalog order. The result is a deep copy.
func (c *Catalog) List() []RoleConfig {
	out := make([]RoleConfig, len(c.configs))
	for i, cfg := range c.configs {
		out[i] = cfg.clone()
	}
	return out
}

// Roles returns the catalog roles in order.
func (c *Catalog) Roles() []Role {
	out := make([]Role, len(c.configs))
	for i, cfg := range c.configs {
		out[i] = cfg.Role
	}
	return out
}

// Lookup returns a copy of the config for role.
func (c *Catalog) Lookup(role string) (RoleConfig, bool) {
	i, ok := c.index[Role(role)]
	if !ok {
		return RoleConfig{}, false
	}
	return c.configs[i].clone(), true
}

// IsValid reports whether role is defined in the catalog.
func (c *Catalog) IsValid(role string) bool {
	_, ok := c.index[Role(role)]
	return ok
}

// permissions returns the stored map without copying. Callers must not mutate it.
func (c *Catalog) permissions(role string) (PermissionMap, bool) {
	i, ok := c.index[Role(role)]
	if !ok {
		return nil, false
	}
	return c.configs[i].Permissions, true
}

// ListRoles returns the built-in catalog in display order.
func ListRoles() []RoleConfig {
	return defaultCatalog.List()
}

// Lookup returns the built-in config for role.
func Lookup(role string) (RoleConfig, bool) {
	return defaultCatalog.Lookup(role)
}

// IsValidRole reports whether role is one of the built-in catalog roles.
func IsValidRole(role string) bool {
	return defaultCatalog.IsValid(role)
}

// RoleNames returns the built-in role values as strings, in catalog order.
func RoleNames() []string {
	roles := defaultCatalog.Roles()
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
