package rbac

import "slices"

// areas lists every resource area in display order.
var areas = []Area{
	AreaUsers,
	AreaFacilities,
	AreaInventory,
	AreaTransactions,
	AreaTransfers,
	AreaReports,
	AreaSystem,
}

// areaCapabilities enumerates the capability set of each area.
// The set varies by area, never by role.
var areaCapabilities = map[Area][]Capability{
	AreaUsers:        {CapView, CapCreate, CapEdit, CapDelete, CapAssignRoles, CapResetPasswords},
	AreaFacilities:   {CapView, CapCreate, CapEdit, CapDelete},
	AreaInventory:    {CapView, CapCreate, CapEdit, CapDelete},
	AreaTransactions: {CapView, CapCreate, CapEdit, CapDelete},
	AreaTransfers:    {CapView, CapCreate, CapEdit, CapDelete, CapApprove},
	AreaReports:      {CapView, CapGenerate, CapExportData, CapSchedule},
	AreaSystem:       {CapView, CapConfigure, CapBackup, CapAuditLogs},
}

// Areas returns all resource areas in display order.
func Areas() []Area {
	return slices.Clone(areas)
}

// CapabilitiesOf returns the capability names defined for an area.
// Unknown areas have none.
func CapabilitiesOf(area Area) []Capability {
	return slices.Clone(areaCapabilities[area])
}

// builtinRoles is the authoritative role catalog.
func builtinRoles() []RoleConfig {
	return []RoleConfig{
		{
			Role:        RoleAdmin,
			Label:       "Administrator",
			Description: "Full system access: user and role management, configuration and all operational data.",
			Permissions: PermissionMap{
				AreaUsers: {
					CapView: true, CapCreate: true, CapEdit: true, CapDelete: true,
					CapAssignRoles: true, CapResetPasswords: true,
				},
				AreaFacilities: {
					CapView: true, CapCreate: true, CapEdit: true, CapDelete: true,
				},
				AreaInventory: {
					CapView: true, CapCreate: true, CapEdit: true, CapDelete: true,
				},
				AreaTransactions: {
					CapView: true, CapCreate: true, CapEdit: true, CapDelete: true,
				},
				AreaTransfers: {
					CapView: true, CapCreate: true, CapEdit: true, CapDelete: true, CapApprove: true,
				},
				AreaReports: {
					CapView: true, CapGenerate: true, CapExportData: true, CapSchedule: true,
				},
				AreaSystem: {
					CapView: true, CapConfigure: true, CapBackup: true, CapAuditLogs: true,
				},
			},
		},
		{
			Role:        RoleRegionalSupervisor,
			Label:       "Regional Supervisor",
			Description: "Oversees all districts in a region: manages staff accounts, approves transfers and reviews reports.",
			Permissions: PermissionMap{
				AreaUsers: {
					CapView: true, CapCreate: true, CapEdit: true, CapDelete: false,
					CapAssignRoles: false, CapResetPasswords: true,
				},
				AreaFacilities: {
					CapView: true, CapCreate: true, CapEdit: true, CapDelete: false,
				},
				AreaInventory: {
					CapView: true, CapCreate: true, CapEdit: true, CapDelete: false,
				},
				AreaTransactions: {
					CapView: true, CapCreate: true, CapEdit: true, CapDelete: false,
				},
				AreaTransfers: {
					CapView: true, CapCreate: true, CapEdit: true, CapDelete: false, CapApprove: true,
				},
				AreaReports: {
					CapView: true, CapGenerate: true, CapExportData: true, CapSchedule: true,
				},
				AreaSystem: {
					CapView: true, CapConfigure: false, CapBackup: false, CapAuditLogs: true,
				},
			},
		},
		{
			Role:        RoleDistrictHealthOfficer,
			Label:       "District Health Officer",
			Description: "Manages stock across facilities in a district and approves inter-facility transfers.",
			Permissions: PermissionMap{
				AreaUsers: {
					CapView: true, CapCreate: false, CapEdit: false, CapDelete: false,
					CapAssignRoles: false, CapResetPasswords: false,
				},
				AreaFacilities: {
					CapView: true, CapCreate: false, CapEdit: true, CapDelete: false,
				},
				AreaInventory: {
					CapView: true, CapCreate: true, CapEdit: true, CapDelete: false,
				},
				AreaTransactions: {
					CapView: true, CapCreate: true, CapEdit: true, CapDelete: false,
				},
				AreaTransfers: {
					CapView: true, CapCreate: true, CapEdit: false, CapDelete: false, CapApprove: true,
				},
				AreaReports: {
					CapView: true, CapGenerate: true, CapExportData: true, CapSchedule: false,
				},
				AreaSystem: {
					CapView: false, CapConfigure: false, CapBackup: false, CapAuditLogs: false,
				},
			},
		},
		{
			Role:        RoleFacilityManager,
			Label:       "Facility Manager",
			Description: "Runs a single facility: records stock movements, requests transfers and prints facility reports.",
			Permissions: PermissionMap{
				AreaUsers: {
					CapView: false, CapCreate: false, CapEdit: false, CapDelete: false,
					CapAssignRoles: false, CapResetPasswords: false,
				},
				AreaFacilities: {
					CapView: true, CapCreate: false, CapEdit: false, CapDelete: false,
				},
				AreaInventory: {
					CapView: true, CapCreate: true, CapEdit: true, CapDelete: false,
				},
				AreaTransactions: {
					CapView: true, CapCreate: true, CapEdit: false, CapDelete: false,
				},
				AreaTransfers: {
					CapView: true, CapCreate: true, CapEdit: false, CapDelete: false, CapApprove: false,
				},
				AreaReports: {
					CapView: true, CapGenerate: true, CapExportData: false, CapSchedule: false,
				},
				AreaSystem: {
					CapView: false, CapConfigure: false, CapBackup: false, CapAuditLogs: false,
				},
			},
		},
		{
			Role:        RoleVillageHealthWorker,
			Label:       "Village Health Worker",
			Description: "Community-level staff: checks stock on hand and records dispensing transactions.",
			Permissions: PermissionMap{
				AreaUsers: {
					CapView: false, CapCreate: false, CapEdit: false, CapDelete: false,
					CapAssignRoles: false, CapResetPasswords: false,
				},
				AreaFacilities: {
					CapView: false, CapCreate: false, CapEdit: false, CapDelete: false,
				},
				AreaInventory: {
					CapView: true, CapCreate: false, CapEdit: false, CapDelete: false,
				},
				AreaTransactions: {
					CapView: true, CapCreate: true, CapEdit: false, CapDelete: false,
				},
				AreaTransfers: {
					CapView: false, CapCreate: false, CapEdit: false, CapDelete: false, CapApprove: false,
				},
				AreaReports: {
					CapView: false, CapGenerate: false, CapExportData: false, CapSchedule: false,
				},
				AreaSystem: {
					CapView: false, CapConfigure: false, CapBackup: false, CapAuditLogs: false,
				},
			},
		},
	}
}
