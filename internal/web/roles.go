package web

import (
	"github.com/dmitrymomot/medstock/handler"
	"github.com/dmitrymomot/medstock/pkg/rbac"
)

type roleRequest struct {
	Role string `path:"role"`
}

type draftRequest struct {
	Role       string `path:"role" json:"-"`
	Area       string `json:"area" form:"area"`
	Capability string `json:"capability" form:"capability"`
	Allowed    bool   `json:"allowed" form:"allowed"`
}

type draftView struct {
	Role        string             `json:"role"`
	Permissions rbac.PermissionMap `json:"permissions"`
	Changes     []rbac.Change      `json:"changes"`
}

func (s *Server) roles(ctx handler.Context, _ struct{}) handler.Response {
	summaries := s.catalog.Summaries()
	if handler.WantsJSON(ctx.Request()) {
		return handler.JSON(summaries)
	}
	return handler.Templ(rolesPage(rolesParams{Session: current(ctx), Summaries: summaries}))
}

func (s *Server) getDraft(_ handler.Context, req roleRequest) handler.Response {
	return s.draft(req.Role)
}

// setDraft toggles one capability in the role's draft. Drafts are never
// consulted by access checks.
func (s *Server) setDraft(_ handler.Context, req draftRequest) handler.Response {
	area, capability, err := rbac.ParsePermission(req.Area + "." + req.Capability)
	if err != nil {
		return handler.Error(err)
	}
	if err := s.drafts.Set(req.Role, area, capability, req.Allowed); err != nil {
		return handler.Error(err)
	}
	return s.draft(req.Role)
}

func (s *Server) discardDraft(_ handler.Context, req roleRequest) handler.Response {
	if !s.catalog.IsValid(req.Role) {
		return handler.Error(rbac.ErrInvalidRole)
	}
	s.drafts.Discard(req.Role)
	return handler.Empty()
}

func (s *Server) draft(role string) handler.Response {
	perms, err := s.drafts.Get(role)
	if err != nil {
		return handler.Error(err)
	}
	changes, err := s.drafts.Diff(role)
	if err != nil {
		return handler.Error(err)
	}
	if changes == nil {
		changes = []rbac.Change{}
	}
	return handler.JSON(draftView{Role: role, Permissions: perms, Changes: changes})
}
