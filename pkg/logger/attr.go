package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the user identifier under the key "user_id".
// Empty ids produce an empty Attr.
func UserID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("user_id", id)
}

// Role records a role name under the key "role".
func Role[T ~string](role T) slog.Attr {
	if role == "" {
		return slog.Attr{}
	}
	return slog.String("role", string(role))
}

// RequestID records the request identifier under the key "request_id".
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// Area records a resource area under the key "area".
func Area[T ~string](area T) slog.Attr {
	return slog.String("area", string(area))
}

// Capability records a capability under the key "capability".
func Capability[T ~string](capability T) slog.Attr {
	return slog.String("capability", string(capability))
}

// Decision records an access decision under the key "decision".
func Decision(outcome string) slog.Attr {
	return slog.String("decision", outcome)
}

// Path records a request path under the key "path".
func Path(p string) slog.Attr {
	return slog.String("path", p)
}

// Duration records a duration under the key "duration".
func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event records the event name under the key "event".
func Event(name string) slog.Attr {
	return slog.String("event", name)
}
