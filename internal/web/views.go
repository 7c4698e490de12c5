package web

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/medstock/handler"
	"github.com/dmitrymomot/medstock/internal/users"
	"github.com/dmitrymomot/medstock/pkg/rbac"
	"github.com/dmitrymomot/medstock/pkg/session"
)

const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.5/bundles/datastar.js"

var esc = templ.EscapeString[string]

// writer collects the first write error so views stay linear.
type writer struct {
	w   io.Writer
	err error
}

func (w *writer) printf(format string, args ...any) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.w, format, args...)
}

func view(fn func(w *writer)) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, out io.Writer) error {
		w := &writer{w: out}
		fn(w)
		return w.err
	})
}

func page(title string, sess *session.Session, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.printf(`<!doctype html><html lang="en"><head><meta charset="utf-8"><title>%s · medstock</title>`, esc(title))
		w.printf(`<script type="module" src="%s"></script></head><body>`, datastarScript)
		if sess != nil {
			w.printf(`<header><strong>medstock</strong> <span id="whoami">%s (%s)</span>`,
				esc(sess.Profile.Name), esc(roleLabel(sess.Role())))
			w.printf(`<form method="post" action="/logout"><button type="submit">Sign out</button></form></header>`)
		}
		w.printf(`<div id="toast-container"></div><main>`)
		if w.err != nil {
			return w.err
		}
		if err := body.Render(ctx, out); err != nil {
			return err
		}
		w.printf(`</main></body></html>`)
		return w.err
	})
}

type loginParams struct {
	Email    string
	Redirect string
	Message  string
}

func loginForm(p loginParams) templ.Component {
	return view(func(w *writer) {
		w.printf(`<form id="login-form" method="post" action="/login">`)
		if p.Message != "" {
			w.printf(`<p class="error" role="alert">%s</p>`, esc(p.Message))
		}
		w.printf(`<input type="hidden" name="redirect" value="%s">`, esc(p.Redirect))
		w.printf(`<label>Email <input type="email" name="email" value="%s" required></label>`, esc(p.Email))
		w.printf(`<label>Password <input type="password" name="password" required></label>`)
		w.printf(`<button type="submit">Sign in</button></form>`)
	})
}

func loginPage(p loginParams) templ.Component {
	return page("Sign in", nil, loginForm(p))
}

type dashboardParams struct {
	Session *session.Session
	Summary rbac.RoleSummary
	Areas   []rbac.Area
}

func dashboardPage(p dashboardParams) templ.Component {
	return page("Dashboard", p.Session, view(func(w *writer) {
		prof := p.Session.Profile
		w.printf(`<h1>Welcome, %s</h1>`, esc(prof.Name))
		w.printf(`<p>Role: <strong>%s</strong>. %d permissions across %d areas.</p>`,
			esc(roleLabel(p.Summary.Role)), p.Summary.Permissions, p.Summary.AccessibleAreas)
		if loc := profileLocation(prof); loc != "" {
			w.printf(`<p>Location: %s</p>`, esc(loc))
		}
		w.printf(`<nav><ul>`)
		for _, a := range p.Areas {
			w.printf(`<li>%s</li>`, esc(string(a)))
		}
		w.printf(`</ul></nav>`)
	}))
}

type rolesParams struct {
	Session   *session.Session
	Summaries []rbac.RoleSummary
}

func rolesPage(p rolesParams) templ.Component {
	return page("Roles", p.Session, view(func(w *writer) {
		w.printf(`<h1>Roles</h1><table id="roles"><thead><tr><th>Role</th><th>Description</th><th>Permissions</th><th>Areas</th></tr></thead><tbody>`)
		for _, s := range p.Summaries {
			w.printf(`<tr data-role="%s"><td>%s</td><td>%s</td><td>%d</td><td>%d</td></tr>`,
				esc(string(s.Role)), esc(s.Label), esc(s.Description), s.Permissions, s.AccessibleAreas)
		}
		w.printf(`</tbody></table>`)
	}))
}

func usersTable(list []users.User) templ.Component {
	return view(func(w *writer) {
		w.printf(`<table id="users-table"><thead><tr><th>Name</th><th>Email</th><th>Phone</th><th>Role</th><th>Location</th><th>Status</th></tr></thead><tbody>`)
		for _, u := range list {
			w.printf(`<tr id="user-%s"><td><a href="/users/%s">%s</a></td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
				esc(u.ID), esc(u.ID), esc(u.Name), esc(u.Email), esc(u.Phone),
				esc(roleLabel(u.Role)), esc(u.Location()), esc(string(u.Status)))
		}
		w.printf(`</tbody></table>`)
	})
}

type usersParams struct {
	Session *session.Session
	Users   []users.User
}

func usersPage(p usersParams) templ.Component {
	table := usersTable(p.Users)
	return page("Users", p.Session, templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.printf(`<h1>Users</h1><div data-on-load="@get('/users/stream')">`)
		if w.err != nil {
			return w.err
		}
		if err := table.Render(ctx, out); err != nil {
			return err
		}
		w.printf(`</div>`)
		return w.err
	}))
}

type userParams struct {
	Session *session.Session
	User    *users.User
}

func userPage(p userParams) templ.Component {
	u := p.User
	return page(u.Name, p.Session, view(func(w *writer) {
		w.printf(`<h1>%s</h1><dl id="user-detail">`, esc(u.Name))
		w.printf(`<dt>Email</dt><dd>%s</dd><dt>Phone</dt><dd>%s</dd>`, esc(u.Email), esc(u.Phone))
		w.printf(`<dt>Role</dt><dd>%s</dd><dt>Status</dt><dd>%s</dd>`, esc(roleLabel(u.Role)), esc(string(u.Status)))
		if loc := u.Location(); loc != "" {
			w.printf(`<dt>Location</dt><dd>%s</dd>`, esc(loc))
		}
		if u.LastLogin != nil {
			w.printf(`<dt>Last sign-in</dt><dd>%s</dd>`, esc(u.LastLogin.Format("2006-01-02 15:04")))
		}
		w.printf(`</dl>`)
	}))
}

type systemParams struct {
	Session  *session.Session
	Catalog  []rbac.RoleSummary
	Sessions int
	Users    int
}

func systemPage(p systemParams) templ.Component {
	return page("System", p.Session, view(func(w *writer) {
		w.printf(`<h1>System</h1><ul id="system">`)
		w.printf(`<li>Roles: %d</li><li>Users: %d</li><li>Live sessions: %d</li>`, len(p.Catalog), p.Users, p.Sessions)
		w.printf(`</ul>`)
	}))
}

func errorPage(p handler.ErrorPageParams) templ.Component {
	return page("Error", nil, view(func(w *writer) {
		w.printf(`<h1>%d</h1><p id="error-message">%s</p>`, p.StatusCode, esc(p.Error))
		for field, msgs := range p.Details {
			w.printf(`<p class="field-error" data-field="%s">%s</p>`, esc(field), esc(strings.Join(msgs, "; ")))
		}
		if p.RequestID != "" {
			w.printf(`<p><small>Request %s</small></p>`, esc(p.RequestID))
		}
	}))
}

func errorToast(p handler.ErrorToastParams) templ.Component {
	return view(func(w *writer) {
		w.printf(`<div class="toast toast-%s" role="alert">%s</div>`, esc(p.Type), esc(p.Message))
	})
}

func roleLabel(r rbac.Role) string {
	if cfg, ok := rbac.Lookup(string(r)); ok {
		return cfg.Label
	}
	return string(r)
}

func profileLocation(p session.Profile) string {
	return users.User{
		Role:         p.Role,
		FacilityName: p.FacilityName,
		Region:       p.Region,
		District:     p.District,
	}.Location()
}
