// Package rbac provides the role catalog, permission matrix and access evaluator
// for the console.
//
// The model is static: five roles, seven resource areas, and a fixed set of
// named capabilities per area. Every role carries a fully enumerated
// PermissionMap, so a lookup either hits a stored boolean or falls through to
// deny. Nothing in this package ever grants access by default.
//
// Key concepts:
//
//   - Role: one of admin, regional_supervisor, district_health_officer,
//     facility_manager, village_health_worker
//   - Area: users, facilities, inventory, transactions, transfers, reports, system
//   - Capability: a boolean permission inside an area (view, create, approve, ...)
//   - Permission: the "area.capability" string form used in route declarations
//
// Basic usage:
//
//	if rbac.Can(user.Role, rbac.AreaInventory, rbac.CapEdit) {
//	    // show the edit button
//	}
//
//	// Display aggregates, never use them for access decisions
//	total := rbac.CountPermissions("admin")       // 31
//	areas := rbac.CountAccessibleAreas("admin")   // 7
//
//	// Route declarations use the string form
//	p, err := rbac.ParsePermission("users.delete")
//
// Draft editing of role permissions is kept apart from the catalog in Drafts.
// Drafts are never consulted by Can.
package rbac
