package guard

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/dmitrymomot/medstock/handler"
	"github.com/dmitrymomot/medstock/pkg/logger"
	"github.com/dmitrymomot/medstock/pkg/rbac"
	"github.com/dmitrymomot/medstock/pkg/session"
)

// Decision is the outcome of a guard check.
type Decision int

const (
	Allow Decision = iota
	RedirectSignIn
	RedirectDenied
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectSignIn:
		return "sign_in"
	case RedirectDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// Rule is what a route requires: a set of acceptable roles or one capability.
type Rule struct {
	roles      []rbac.Role
	area       rbac.Area
	capability rbac.Capability
}

// AnyRole accepts sessions whose role is one of roles.
func AnyRole(roles ...rbac.Role) Rule {
	return Rule{roles: slices.Clone(roles)}
}

// Requires accepts sessions whose role holds capability on area.
func Requires(area rbac.Area, capability rbac.Capability) Rule {
	return Rule{area: area, capability: capability}
}

// SignedIn accepts any session. A role outside the catalog still gets in but
// holds no permissions, so the denied URL stays reachable.
func SignedIn() Rule {
	return Rule{}
}

func (r Rule) String() string {
	switch {
	case len(r.roles) > 0:
		names := make([]string, len(r.roles))
		for i, role := range r.roles {
			names[i] = string(role)
		}
		return "roles:" + strings.Join(names, ",")
	case r.area != "":
		return string(rbac.NewPermission(r.area, r.capability))
	default:
		return "signed_in"
	}
}

// Observer is notified of every decision.
type Observer func(ctx context.Context, rule Rule, decision Decision)

// Guard evaluates rules against the current session.
type Guard struct {
	catalog   *rbac.Catalog
	signInURL string
	deniedURL string
	logger    *slog.Logger
	observers []Observer
}

// Option configures a Guard.
type Option func(*Guard)

// WithCatalog evaluates against catalog instead of the built-in one.
func WithCatalog(c *rbac.Catalog) Option {
	return func(g *Guard) {
		if c != nil {
			g.catalog = c
		}
	}
}

// WithSignInURL sets where unauthenticated requests are sent. Default "/login".
func WithSignInURL(u string) Option {
	return func(g *Guard) { g.signInURL = u }
}

// WithDeniedURL sets where denied requests are sent. Default "/dashboard".
func WithDeniedURL(u string) Option {
	return func(g *Guard) { g.deniedURL = u }
}

// WithLogger sets the guard logger. Decisions are logged at debug.
func WithLogger(l *slog.Logger) Option {
	return func(g *Guard) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithObserver registers an observer for decisions.
func WithObserver(o Observer) Option {
	return func(g *Guard) {
		if o != nil {
			g.observers = append(g.observers, o)
		}
	}
}

// New creates a Guard.
func New(opts ...Option) *Guard {
	g := &Guard{
		catalog:   rbac.Default(),
		signInURL: "/login",
		deniedURL: "/dashboard",
		logger:    logger.Noop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With(logger.Component("guard"))
	return g
}

// Check decides whether sess may reach a route protected by rule.
// Nothing is cached; the session role is read on every call.
func (g *Guard) Check(sess *session.Session, rule Rule) Decision {
	if sess == nil {
		return RedirectSignIn
	}
	role := string(sess.Role())

	switch {
	case len(rule.roles) > 0:
		if g.catalog.IsValid(role) && slices.Contains(rule.roles, sess.Role()) {
			return Allow
		}
		return RedirectDenied
	case rule.area != "":
		if g.catalog.Can(role, rule.area, rule.capability) {
			return Allow
		}
		return RedirectDenied
	default:
		return Allow
	}
}

// Middleware enforces rule on every request. Unauthenticated requests go to
// the sign-in URL with a redirect back to the original path; denied requests
// go to the denied URL. DataStar requests get an SSE redirect.
func (g *Guard) Middleware(rule Rule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, _ := session.FromContext(r.Context())
			decision := g.Check(sess, rule)

			g.logger.DebugContext(r.Context(), "guard decision",
				logger.Path(r.URL.Path),
				slog.String("rule", rule.String()),
				logger.Decision(decision.String()),
				logger.Role(sess.Role()),
			)
			for _, o := range g.observers {
				o(r.Context(), rule, decision)
			}

			switch decision {
			case Allow:
				next.ServeHTTP(w, r)
			case RedirectSignIn:
				_ = handler.Redirect(g.signInTarget(r)).Render(w, r)
			default:
				_ = handler.Redirect(g.deniedURL).Render(w, r)
			}
		})
	}
}

// Require is shorthand for Middleware(Requires(area, capability)).
func (g *Guard) Require(area rbac.Area, capability rbac.Capability) func(http.Handler) http.Handler {
	return g.Middleware(Requires(area, capability))
}

func (g *Guard) signInTarget(r *http.Request) string {
	back := r.URL.RequestURI()
	if handler.IsDataStar(r) {
		if ref, err := url.Parse(r.Referer()); err == nil && ref.Path != "" {
			back = ref.RequestURI()
		}
	}
	back = handler.SafeRedirectPath(back, "")
	if back == "" {
		return g.signInURL
	}
	return g.signInURL + "?redirect=" + url.QueryEscape(back)
}
