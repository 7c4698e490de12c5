package rbac

import (
	"fmt"
	"sync"
)

// Change describes one capability whose draft value differs from the catalog.
type Change struct {
	Area       Area       `json:"area"`
	Capability Capability `json:"capability"`
	From       bool       `json:"from"`
	To         bool       `json:"to"`
}

// Drafts holds unsaved permission edits made in the role editor.
// Drafts are never consulted by access checks; the catalog stays authoritative.
type Drafts struct {
	mu      sync.RWMutex
	catalog *Catalog
	pending map[Role]PermissionMap
}

// NewDrafts creates an empty draft set over catalog.
func NewDrafts(catalog *Catalog) *Drafts {
	if catalog == nil {
		catalog = Default()
	}
	return &Drafts{
		catalog: catalog,
		pending: make(map[Role]PermissionMap),
	}
}

// Get returns the draft map for role, or a copy of the catalog map when
// no edits are pending.
func (d *Drafts) Get(role string) (PermissionMap, error) {
	cfg, ok := d.catalog.Lookup(role)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if draft, ok := d.pending[Role(role)]; ok {
		return draft.Clone(), nil
	}
	return cfg.Permissions, nil
}

// Set toggles one capability in the role's draft.
func (d *Drafts) Set(role string, area Area, capability Capability, allowed bool) error {
	cfg, ok := d.catalog.Lookup(role)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	if _, ok := areaCapabilities[area]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidPermission, NewPermission(area, capability))
	}
	if _, ok := cfg.Permissions[area][capability]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidPermission, NewPermission(area, capability))
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	draft, ok := d.pending[Role(role)]
	if !ok {
		draft = cfg.Permissions
		d.pending[Role(role)] = draft
	}
	draft[area][capability] = allowed
	return nil
}

// Discard drops any pending edits for role.
func (d *Drafts) Discard(role string) {
	d.mu.Lock()
	delete(d.pending, Role(role))
	d.mu.Unlock()
}

// Diff lists draft values that differ from the catalog, in display order.
func (d *Drafts) Diff(role string) ([]Change, error) {
	cfg, ok := d.catalog.Lookup(role)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	draft, ok := d.pending[Role(role)]
	if !ok {
		return nil, nil
	}

	var changes []Change
	for _, area := range areas {
		for _, capability := range areaCapabilities[area] {
			from := cfg.Permissions.Allowed(area, capability)
			to := draft.Allowed(area, capability)
			if from != to {
				changes = append(changes, Change{Area: area, Capability: capability, From: from, To: to})
			}
		}
	}
	return changes, nil
}
