package rbac

// Can answers whether role may perform capability on area.
// Unknown roles, areas and capabilities are denied.
func (c *Catalog) Can(role string, area Area, capability Capability) bool {
	perms, ok := c.permissions(role)
	if !ok {
		return false
	}
	return perms.Allowed(area, capability)
}

// CountPermissions returns the number of granted capabilities for role.
// It is a display metric; use Can for access decisions.
func (c *Catalog) CountPermissions(role string) int {
	perms, ok := c.permissions(role)
	if !ok {
		return 0
	}
	return perms.Count()
}

// CountAccessibleAreas returns the number of areas whose primary capability
// is granted to role.
func (c *Catalog) CountAccessibleAreas(role string) int {
	perms, ok := c.permissions(role)
	if !ok {
		return 0
	}
	n := 0
	for _, area := range areas {
		if perms.Allowed(area, PrimaryCapability) {
			n++
		}
	}
	return n
}

// AccessibleAreas lists the areas whose primary capability is granted, in display order.
func (c *Catalog) AccessibleAreas(role string) []Area {
	perms, ok := c.permissions(role)
	if !ok {
		return nil
	}
	out := make([]Area, 0, len(areas))
	for _, area := range areas {
		if perms.Allowed(area, PrimaryCapability) {
			out = append(out, area)
		}
	}
	return out
}

// Summary returns display aggregates for role. Unknown roles yield a zero
// summary carrying only the role value.
func (c *Catalog) Summary(role string) RoleSummary {
	cfg, ok := c.Lookup(role)
	if !ok {
		return RoleSummary{Role: Role(role)}
	}
	return RoleSummary{
		Role:            cfg.Role,
		Label:           cfg.Label,
		Description:     cfg.Description,
		Permissions:     cfg.Permissions.Count(),
		AccessibleAreas: c.CountAccessibleAreas(role),
	}
}

// Summaries returns Summary for every catalog role in order.
func (c *Catalog) Summaries() []RoleSummary {
	out := make([]RoleSummary, 0, len(c.configs))
	for _, cfg := range c.configs {
		out = append(out, c.Summary(string(cfg.Role)))
	}
	return out
}

// Can evaluates against the built-in catalog.
func Can(role string, area Area, capability Capability) bool {
	return defaultCatalog.Can(role, area, capability)
}

// CountPermissions counts granted capabilities in the built-in catalog.
func CountPermissions(role string) int {
	return defaultCatalog.CountPermissions(role)
}

// CountAccessibleAreas counts viewable areas in the built-in catalog.
func CountAccessibleAreas(role string) int {
	return defaultCatalog.CountAccessibleAreas(role)
}

// Summary returns display aggregates from the built-in catalog.
func Summary(role string) RoleSummary {
	return defaultCatalog.Summary(role)
}
