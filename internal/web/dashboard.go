package web

import "github.com/dmitrymomot/medstock/handler"

func (s *Server) dashboard(ctx handler.Context, _ struct{}) handler.Response {
	sess := current(ctx)
	role := string(sess.Role())
	return handler.Templ(dashboardPage(dashboardParams{
		Session: sess,
		Summary: s.catalog.Summary(role),
		Areas:   s.catalog.AccessibleAreas(role),
	}))
}

func (s *Server) system(ctx handler.Context, _ struct{}) handler.Response {
	live, err := s.sessions.Count(ctx)
	if err != nil {
		return handler.Error(err)
	}
	list, err := s.users.List(ctx)
	if err != nil {
		return handler.Error(err)
	}
	return handler.Templ(systemPage(systemParams{
		Session:  current(ctx),
		Catalog:  s.catalog.Summaries(),
		Sessions: live,
		Users:    len(list),
	}))
}

