package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/medstock/internal/metrics"
	"github.com/dmitrymomot/medstock/pkg/guard"
	"github.com/dmitrymomot/medstock/pkg/rbac"
	"github.com/dmitrymomot/medstock/pkg/session"
)

func TestInstrumentUsesRoutePattern(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	r := chi.NewRouter()
	r.Use(m.Instrument)
	r.Get("/users/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users/"+id, nil))
	}

	expected := `
# HELP medstock_http_requests_total Total number of HTTP requests.
# TYPE medstock_http_requests_total counter
medstock_http_requests_total{method="GET",route="/users/{id}",status="404"} 3
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "medstock_http_requests_total"))
}

func TestGuardObserver(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	g := guard.New(guard.WithObserver(m.GuardObserver()))
	h := g.Require(rbac.AreaUsers, rbac.CapView)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users", nil))

	expected := `
# HELP medstock_guard_decisions_total Route guard decisions by rule and outcome.
# TYPE medstock_guard_decisions_total counter
medstock_guard_decisions_total{outcome="sign_in",rule="users.view"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "medstock_guard_decisions_total"))
}

func TestSessionObserver(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	observe := m.SessionObserver()
	observe(session.Event{Type: session.EventSignedIn})
	observe(session.Event{Type: session.EventSignedIn})
	observe(session.Event{Type: session.EventSignedOut})

	n, err := testutil.GatherAndCount(m.Registry(), "medstock_session_events_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestHandler(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	m.SessionObserver()(session.Event{Type: session.EventRestored})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `medstock_session_events_total{type="restored"} 1`)
}
