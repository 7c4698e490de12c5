package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/medstock/pkg/logger"
)

// Check is a named readiness dependency.
type Check struct {
	Name string
	Fn   func(context.Context) error
}

// HealthHandler reports liveness when no checks are given and readiness
// otherwise. Failed checks are listed in the body and answer 503.
func HealthHandler(log *slog.Logger, checks ...Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{}
		healthy := true
		for _, c := range checks {
			if err := c.Fn(r.Context()); err != nil {
				healthy = false
				status[c.Name] = "down"
				log.ErrorContext(r.Context(), "readiness check failed", slog.String("check", c.Name), logger.Error(err))
				continue
			}
			status[c.Name] = "up"
		}

		code := http.StatusOK
		state := "ok"
		if !healthy {
			code = http.StatusServiceUnavailable
			state = "unavailable"
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]any{"status": state, "checks": status})
	}
}
