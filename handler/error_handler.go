package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/dmitrymomot/medstock/pkg/logger"
	"github.com/dmitrymomot/medstock/pkg/requestid"
)

// ErrorPageParams contains data for rendering error pages.
type ErrorPageParams struct {
	Error      string
	StatusCode int
	RequestID  string
	RetryURL   string
	Details    map[string][]string
}

// ErrorToastParams contains data for rendering error toasts.
type ErrorToastParams struct {
	Message   string
	Type      string // "error", "warning", "info"
	RequestID string
}

// ErrorStatus maps a sentinel error to a status code and message key.
type ErrorStatus struct {
	Err  error
	Code int
	Key  string
}

// ErrorHandlerConfig configures NewErrorHandler.
type ErrorHandlerConfig struct {
	// ErrorPage renders a full error page for regular requests.
	ErrorPage func(ErrorPageParams) templ.Component

	// ErrorToast renders a notification for DataStar requests.
	ErrorToast func(ErrorToastParams) templ.Component

	// ToastTarget is the toast container selector (default "#toast-container").
	ToastTarget string

	// ToastMode is how toasts are patched (default PatchPrepend).
	ToastMode datastar.ElementPatchMode

	// Statuses are checked in order with errors.Is.
	Statuses []ErrorStatus
}

// ErrorInfo is the classification of an error.
type ErrorInfo struct {
	StatusCode int
	Code       string
	Message    string
	Type       string
	LogLevel   slog.Level
	Details    map[string][]string
}

func classifyError(err error, statuses []ErrorStatus) ErrorInfo {
	info := ErrorInfo{
		StatusCode: http.StatusInternalServerError,
		Code:       "internal_error",
		Message:    "An error occurred processing your request",
	}

	if detail, ok := validationDetail(err); ok {
		info.StatusCode = http.StatusUnprocessableEntity
		info.Code = detail.Code
		info.Message = detail.Message
		info.Details = detail.Details
	} else if status, ok := matchStatus(err, statuses); ok {
		info.StatusCode = status.Code
		info.Code = status.Key
		info.Message = status.Key
	} else {
		var httpErr HTTPError
		if errors.As(err, &httpErr) {
			info.StatusCode = httpErr.Code
			info.Code = httpErr.Key
			info.Message = httpErr.Key
		}
	}

	switch {
	case info.StatusCode >= http.StatusInternalServerError:
		info.Type = "error"
		info.LogLevel = slog.LevelError
	case info.StatusCode >= http.StatusBadRequest:
		info.Type = "warning"
		info.LogLevel = slog.LevelWarn
	default:
		info.Type = "info"
		info.LogLevel = slog.LevelInfo
	}
	return info
}

func matchStatus(err error, statuses []ErrorStatus) (ErrorStatus, bool) {
	for _, s := range statuses {
		if errors.Is(err, s.Err) {
			return s, true
		}
	}
	return ErrorStatus{}, false
}

// NewErrorHandler creates an error handler that adapts to the request type:
// JSON clients get an error envelope, DataStar gets a toast and browsers get
// an error page.
func NewErrorHandler(log *slog.Logger, cfg ErrorHandlerConfig) ErrorHandler[Context] {
	if log == nil {
		log = slog.Default()
	}
	if cfg.ToastTarget == "" {
		cfg.ToastTarget = "#toast-container"
	}
	if cfg.ToastMode == "" {
		cfg.ToastMode = PatchPrepend
	}
	log = log.With(logger.Component("error_handler"))

	return func(ctx Context, err error) {
		r := ctx.Request()
		w := ctx.ResponseWriter()
		reqID := requestid.FromContext(r.Context())
		info := classifyError(err, cfg.Statuses)

		log.LogAttrs(r.Context(), info.LogLevel, "request error",
			logger.RequestID(reqID),
			logger.Error(err),
			slog.Int("status_code", info.StatusCode),
			slog.String("method", r.Method),
			logger.Path(r.URL.Path),
		)

		var renderErr error
		switch {
		case WantsJSON(r):
			renderErr = JSONError(info.StatusCode, ErrorDetail{
				Code:    info.Code,
				Message: info.Message,
				Details: info.Details,
			}).Render(w, r)
		case IsDataStar(r):
			if cfg.ErrorToast == nil {
				data, _ := json.Marshal(map[string]any{"error": info.Message})
				renderErr = NewSSE(w, r).PatchSignals(data)
				break
			}
			renderErr = Templ(cfg.ErrorToast(ErrorToastParams{
				Message:   info.Message,
				Type:      info.Type,
				RequestID: reqID,
			}), WithTarget(cfg.ToastTarget), WithPatchMode(cfg.ToastMode)).Render(w, r)
		case cfg.ErrorPage != nil:
			renderErr = TemplWithStatus(info.StatusCode, cfg.ErrorPage(ErrorPageParams{
				Error:      info.Message,
				StatusCode: info.StatusCode,
				RequestID:  reqID,
				RetryURL:   r.URL.Path,
				Details:    info.Details,
			})).Render(w, r)
		default:
			http.Error(w, info.Message, info.StatusCode)
		}

		if renderErr != nil {
			log.ErrorContext(r.Context(), "failed to render error response",
				logger.RequestID(reqID),
				logger.Error(renderErr),
			)
		}
	}
}
