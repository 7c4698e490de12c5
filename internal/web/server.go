// Package web is the console's HTTP surface: chi routes, guard rules and
// the views they render.
package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/medstock/handler"
	"github.com/dmitrymomot/medstock/internal/metrics"
	"github.com/dmitrymomot/medstock/internal/users"
	"github.com/dmitrymomot/medstock/pkg/auth"
	"github.com/dmitrymomot/medstock/pkg/guard"
	"github.com/dmitrymomot/medstock/pkg/httpserver"
	"github.com/dmitrymomot/medstock/pkg/logger"
	"github.com/dmitrymomot/medstock/pkg/rbac"
	"github.com/dmitrymomot/medstock/pkg/requestid"
	"github.com/dmitrymomot/medstock/pkg/session"
)

// Deps are the services the HTTP surface needs.
type Deps struct {
	Sessions *session.Manager
	Users    *users.Service
	Catalog  *rbac.Catalog
	Metrics  *metrics.Metrics
	Checks   []httpserver.Check
	Logger   *slog.Logger
}

// Server holds route handlers.
type Server struct {
	sessions *session.Manager
	users    *users.Service
	catalog  *rbac.Catalog
	drafts   *rbac.Drafts
	guard    *guard.Guard
	metrics  *metrics.Metrics
	checks   []httpserver.Check
	log      *slog.Logger
	onError  handler.ErrorHandler[handler.Context]
}

// New builds the server. Nil Catalog, Metrics and Logger get defaults.
func New(d Deps) *Server {
	if d.Catalog == nil {
		d.Catalog = rbac.Default()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}
	if d.Logger == nil {
		d.Logger = logger.Noop()
	}
	log := d.Logger.With(logger.Component("web"))

	s := &Server{
		sessions: d.Sessions,
		users:    d.Users,
		catalog:  d.Catalog,
		drafts:   rbac.NewDrafts(d.Catalog),
		metrics:  d.Metrics,
		checks:   d.Checks,
		log:      log,
	}
	s.guard = guard.New(
		guard.WithCatalog(d.Catalog),
		guard.WithLogger(d.Logger),
		guard.WithObserver(d.Metrics.GuardObserver()),
	)
	s.onError = handler.NewErrorHandler(d.Logger, handler.ErrorHandlerConfig{
		ErrorPage:  errorPage,
		ErrorToast: errorToast,
		Statuses:   errorStatuses,
	})
	return s
}

var errorStatuses = []handler.ErrorStatus{
	{Err: users.ErrUserNotFound, Code: http.StatusNotFound, Key: "user_not_found"},
	{Err: users.ErrEmailTaken, Code: http.StatusConflict, Key: "email_taken"},
	{Err: users.ErrAccountCreation, Code: http.StatusBadGateway, Key: "account_creation_failed"},
	{Err: users.ErrDataAccess, Code: http.StatusServiceUnavailable, Key: "data_access_failed"},
	{Err: rbac.ErrInvalidRole, Code: http.StatusNotFound, Key: "role_not_found"},
	{Err: rbac.ErrInvalidPermission, Code: http.StatusBadRequest, Key: "invalid_permission"},
	{Err: auth.ErrInvalidCredentials, Code: http.StatusUnauthorized, Key: "invalid_credentials"},
	{Err: auth.ErrTooManyAttempts, Code: http.StatusTooManyRequests, Key: "too_many_attempts"},
	{Err: session.ErrAccountDisabled, Code: http.StatusUnauthorized, Key: "account_disabled"},
}

// Routes returns the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.Instrument)

	r.Get("/health", httpserver.HealthHandler(s.log, s.checks...))
	r.Handle("/metrics", s.metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.sessions.Middleware)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		})
		r.Get("/login", wrap(s, s.loginForm, queryBinders...))
		r.Post("/login", wrap(s, s.login, formBinders...))
		r.Post("/logout", wrap(s, s.logout))

		r.With(s.guard.Middleware(guard.SignedIn())).Get("/dashboard", wrap(s, s.dashboard))

		r.Route("/roles", func(r chi.Router) {
			r.With(s.guard.Require(rbac.AreaUsers, rbac.CapView)).Get("/", wrap(s, s.roles))
			r.Route("/{role}/draft", func(r chi.Router) {
				r.Use(s.guard.Require(rbac.AreaUsers, rbac.CapAssignRoles))
				r.Get("/", wrap(s, s.getDraft, pathBinders...))
				r.Put("/", wrap(s, s.setDraft, bodyAndPathBinders...))
				r.Delete("/", wrap(s, s.discardDraft, pathBinders...))
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.With(s.guard.Require(rbac.AreaUsers, rbac.CapView)).Get("/", wrap(s, s.listUsers))
			r.With(s.guard.Require(rbac.AreaUsers, rbac.CapCreate)).Post("/", wrap(s, s.createUser, bodyBinders...))
			r.With(s.guard.Require(rbac.AreaUsers, rbac.CapView)).Get("/stream", wrap(s, s.streamUsers))

			r.Route("/{id}", func(r chi.Router) {
				r.With(s.guard.Require(rbac.AreaUsers, rbac.CapView)).Get("/", wrap(s, s.getUser, pathBinders...))
				r.With(s.guard.Require(rbac.AreaUsers, rbac.CapEdit)).Put("/", wrap(s, s.updateUser, bodyAndPathBinders...))
				r.With(s.guard.Require(rbac.AreaUsers, rbac.CapAssignRoles)).Put("/role", wrap(s, s.assignRole, bodyAndPathBinders...))
				r.With(s.guard.Require(rbac.AreaUsers, rbac.CapEdit)).Post("/status", wrap(s, s.setStatus, bodyAndPathBinders...))
				r.With(s.guard.Require(rbac.AreaUsers, rbac.CapDelete)).Delete("/", wrap(s, s.deleteUser, pathBinders...))
			})
		})

		r.Route("/reports", func(r chi.Router) {
			r.Use(s.guard.Require(rbac.AreaReports, rbac.CapGenerate))
			r.With(s.guard.Require(rbac.AreaUsers, rbac.CapView)).Get("/users.pdf", wrap(s, s.usersReport))
			r.Get("/roles.pdf", wrap(s, s.rolesReport))
		})

		r.With(s.guard.Middleware(guard.AnyRole(rbac.RoleAdmin))).Get("/admin/system", wrap(s, s.system))
	})

	return r
}

// wrap adapts a typed handler with the server error handler.
func wrap[R any](s *Server, h handler.HandlerFunc[handler.Context, R], binders ...handler.Bind) http.HandlerFunc {
	return handler.Wrap(h,
		handler.WithBinders[handler.Context, R](binders...),
		handler.WithErrorHandler[handler.Context, R](s.onError),
	)
}

// current returns the signed-in session. Guarded routes always have one.
func current(ctx context.Context) *session.Session {
	sess, _ := session.FromContext(ctx)
	return sess
}
