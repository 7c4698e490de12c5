// Package guard gates console routes on the current session.
//
// A Rule is either a set of acceptable roles or a single capability checked
// with the role catalog. Absent sessions are sent to sign-in and denied
// sessions to the dashboard; denial is a navigation outcome, never an error
// page. Decisions are recomputed on every request so role reassignments take
// effect on the next navigation.
//
//	g := guard.New(guard.WithObserver(metrics.GuardObserver()))
//	r.With(g.Require(rbac.AreaUsers, rbac.CapView)).Get("/users", listUsers)
//	r.With(g.Middleware(guard.AnyRole(rbac.RoleAdmin))).Get("/admin/system", system)
package guard
