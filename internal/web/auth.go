package web

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/medstock/handler"
	"github.com/dmitrymomot/medstock/pkg/auth"
	"github.com/dmitrymomot/medstock/pkg/logger"
	"github.com/dmitrymomot/medstock/pkg/session"
)

const homePath = "/dashboard"

type loginRequest struct {
	Email    string `form:"email"`
	Password string `form:"password"`
	Redirect string `form:"redirect" query:"redirect"`
}

func (s *Server) loginForm(ctx handler.Context, req loginRequest) handler.Response {
	if current(ctx) != nil {
		return handler.Redirect(handler.SafeRedirectPath(req.Redirect, homePath))
	}
	return handler.Templ(loginPage(loginParams{Redirect: req.Redirect}))
}

func (s *Server) login(ctx handler.Context, req loginRequest) handler.Response {
	_, err := s.sessions.Login(ctx.ResponseWriter(), ctx.Request(), req.Email, req.Password)
	if err != nil {
		msg, ok := loginFailure(err)
		if !ok {
			return handler.Error(err)
		}
		s.log.InfoContext(ctx, "sign-in rejected", logger.Error(err))
		params := loginParams{Email: req.Email, Redirect: req.Redirect, Message: msg}
		if handler.IsDataStar(ctx.Request()) {
			return handler.Templ(loginForm(params))
		}
		return handler.TemplWithStatus(http.StatusUnauthorized, loginPage(params))
	}
	return handler.Redirect(handler.SafeRedirectPath(req.Redirect, homePath))
}

func (s *Server) logout(ctx handler.Context, _ struct{}) handler.Response {
	if err := s.sessions.Logout(ctx.ResponseWriter(), ctx.Request()); err != nil {
		s.log.WarnContext(ctx, "sign-out incomplete", logger.Error(err))
	}
	return handler.Redirect("/login")
}

// loginFailure maps authentication errors to the inline message shown on
// the login form. Other errors go to the error handler.
func loginFailure(err error) (string, bool) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Incorrect email or password.", true
	case errors.Is(err, auth.ErrTooManyAttempts):
		return "Too many attempts. Try again in a minute.", true
	case errors.Is(err, session.ErrAccountDisabled):
		return "This account has been deactivated.", true
	default:
		return "", false
	}
}
