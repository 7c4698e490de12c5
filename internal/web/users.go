package web

import (
	"net/http"

	"github.com/dmitrymomot/medstock/handler"
	"github.com/dmitrymomot/medstock/internal/users"
	"github.com/dmitrymomot/medstock/pkg/logger"
)

type userRequest struct {
	ID string `path:"id"`
}

type updateUserRequest struct {
	ID string `path:"id" json:"-"`
	users.UpdateInput
}

type roleAssignment struct {
	ID   string `path:"id" json:"-"`
	Role string `json:"role" form:"role"`
}

type statusChange struct {
	ID     string `path:"id" json:"-"`
	Status string `json:"status" form:"status"`
}

// ErrCannotDeleteSelf is returned when a user tries to delete their own record.
var ErrCannotDeleteSelf = handler.NewHTTPError(http.StatusConflict, "cannot_delete_self")

func (s *Server) listUsers(ctx handler.Context, _ struct{}) handler.Response {
	list, err := s.users.List(ctx)
	if err != nil {
		return handler.Error(err)
	}
	if handler.WantsJSON(ctx.Request()) {
		return handler.JSON(list, handler.WithJSONMeta(map[string]any{"total": len(list)}))
	}
	return handler.TemplPartial(usersTable(list), usersPage(usersParams{Session: current(ctx), Users: list}),
		handler.WithTarget("#users-table"))
}

func (s *Server) createUser(ctx handler.Context, req users.CreateInput) handler.Response {
	u, err := s.users.Create(ctx, req)
	if err != nil {
		return handler.Error(err)
	}
	s.log.InfoContext(ctx, "user created via console", logger.UserID(current(ctx).Profile.ID), logger.Role(u.Role))
	return s.userResult(ctx, u, http.StatusCreated)
}

func (s *Server) getUser(ctx handler.Context, req userRequest) handler.Response {
	u, err := s.users.Get(ctx, req.ID)
	if err != nil {
		return handler.Error(err)
	}
	if handler.WantsJSON(ctx.Request()) {
		return handler.JSON(u)
	}
	return handler.Templ(userPage(userParams{Session: current(ctx), User: u}))
}

func (s *Server) updateUser(ctx handler.Context, req updateUserRequest) handler.Response {
	u, err := s.users.Update(ctx, req.ID, req.UpdateInput)
	if err != nil {
		return handler.Error(err)
	}
	return s.userResult(ctx, u, http.StatusOK)
}

func (s *Server) assignRole(ctx handler.Context, req roleAssignment) handler.Response {
	u, err := s.users.AssignRole(ctx, req.ID, req.Role)
	if err != nil {
		return handler.Error(err)
	}
	return s.userResult(ctx, u, http.StatusOK)
}

// setStatus applies the given status, or toggles it when none is sent.
func (s *Server) setStatus(ctx handler.Context, req statusChange) handler.Response {
	var (
		u   *users.User
		err error
	)
	if req.Status == "" {
		u, err = s.users.ToggleStatus(ctx, req.ID)
	} else {
		u, err = s.users.SetStatus(ctx, req.ID, users.Status(req.Status))
	}
	if err != nil {
		return handler.Error(err)
	}
	return s.userResult(ctx, u, http.StatusOK)
}

func (s *Server) deleteUser(ctx handler.Context, req userRequest) handler.Response {
	if sess := current(ctx); sess != nil && sess.Profile.ID == req.ID {
		return handler.Error(ErrCannotDeleteSelf)
	}
	if err := s.users.Delete(ctx, req.ID); err != nil {
		return handler.Error(err)
	}
	if handler.WantsJSON(ctx.Request()) {
		return handler.Empty()
	}
	return handler.Redirect("/users")
}

// streamUsers pushes the full users table on every change until the client
// disconnects.
func (s *Server) streamUsers(_ handler.Context, _ struct{}) handler.Response {
	return handler.SSE(func(ctx handler.StreamContext) error {
		sub := s.users.Subscribe(ctx)
		defer sub.Unsubscribe()

		for {
			select {
			case <-ctx.Done():
				return nil
			case list, ok := <-sub.Updates():
				if !ok {
					return nil
				}
				if err := ctx.SendComponent(usersTable(list), handler.WithTarget("#users-table")); err != nil {
					return err
				}
			}
		}
	})
}

func (s *Server) userResult(ctx handler.Context, u *users.User, status int) handler.Response {
	if handler.WantsJSON(ctx.Request()) {
		return handler.JSON(u, handler.WithJSONStatus(status))
	}
	return handler.Redirect("/users/" + u.ID)
}
