package rbac

import (
	"fmt"
	"slices"
	"strings"
)

// Role identifies a named bundle of capabilities assigned to a user.
type Role string

// Catalog roles, from most to least privileged.
const (
	RoleAdmin                 Role = "admin"
	RoleRegionalSupervisor    Role = "regional_supervisor"
	RoleDistrictHealthOfficer Role = "district_health_officer"
	RoleFacilityManager       Role = "facility_manager"
	RoleVillageHealthWorker   Role = "village_health_worker"
)

// LeastPrivileged is assigned when a signed-in identity has no user record.
const LeastPrivileged = RoleVillageHealthWorker

// String implements fmt.Stringer.
func (r Role) String() string { return string(r) }

// Area is a logical subsystem that capabilities are grouped under.
type Area string

const (
	AreaUsers        Area = "users"
	AreaFacilities   Area = "facilities"
	AreaInventory    Area = "inventory"
	AreaTransactions Area = "transactions"
	AreaTransfers    Area = "transfers"
	AreaReports      Area = "reports"
	AreaSystem       Area = "system"
)

// Capability is a boolean-valued named permission within an area.
type Capability string

const (
	CapView           Capability = "view"
	CapCreate         Capability = "create"
	CapEdit           Capability = "edit"
	CapDelete         Capability = "delete"
	CapAssignRoles    Capability = "assign_roles"
	CapResetPasswords Capability = "reset_passwords"
	CapApprove        Capability = "approve"
	CapGenerate       Capability = "generate"
	CapExportData     Capability = "export_data"
	CapSchedule       Capability = "schedule"
	CapConfigure      Capability = "configure"
	CapBackup         Capability = "backup"
	CapAuditLogs      Capability = "audit_logs"
)

// PrimaryCapability is the capability that makes an area accessible at all.
const PrimaryCapability = CapView

// PermissionMap maps every area to its capabilities and their granted state.
type PermissionMap map[Area]map[Capability]bool

// Allowed reports whether the capability is granted.
// Missing areas or capabilities are denied.
func (m PermissionMap) Allowed(area Area, capability Capability) bool {
	caps, ok := m[area]
	if !ok {
		return false
	}
	return caps[capability]
}

// Count returns the number of granted capabilities across all areas.
func (m PermissionMap) Count() int {
	n := 0
	for _, caps := range m {
		for _, granted := range caps {
			if granted {
				n++
			}
		}
	}
	return n
}

// Clone returns a deep copy of the map.
func (m PermissionMap) Clone() PermissionMap {
	if m == nil {
		return nil
	}
	out := make(PermissionMap, len(m))
	for area, caps := range m {
		c := make(map[Capability]bool, len(caps))
		for k, v := range caps {
			c[k] = v
		}
		out[area] = c
	}
	return out
}

// RoleConfig is a catalog entry: the role, how it is shown, and what it may do.
type RoleConfig struct {
	Role        Role          `json:"role"`
	Label       string        `json:"label"`
	Description string        `json:"description"`
	Permissions PermissionMap `json:"permissions"`
}

func (c RoleConfig) clone() RoleConfig {
	c.Permissions = c.Permissions.Clone()
	return c
}

// RoleSummary holds display aggregates for a role.
type RoleSummary struct {
	Role            Role   `json:"role"`
	Label           string `json:"label"`
	Description     string `json:"description"`
	Permissions     int    `json:"permissions"`
	AccessibleAreas int    `json:"accessible_areas"`
}

// Permission is the "area.capability" form of a single capability.
type Permission string

// NewPermission joins an area and a capability.
func NewPermission(area Area, capability Capability) Permission {
	return Permission(string(area) + "." + string(capability))
}

// ParsePermission splits a permission string and checks both parts against
// the known areas and capabilities.
func ParsePermission(s string) (Area, Capability, error) {
	area, capability, ok := strings.Cut(strings.TrimSpace(s), ".")
	if !ok || area == "" || capability == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidPermission, s)
	}
	a, c := Area(area), Capability(capability)
	if !slices.Contains(CapabilitiesOf(a), c) {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidPermission, s)
	}
	return a, c, nil
}

// Split is ParsePermission on a typed value.
func (p Permission) Split() (Area, Capability, error) {
	return ParsePermission(string(p))
}
