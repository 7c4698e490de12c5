package session

import (
	"net/http"
	"strings"
	"time"
)

// Transport defines how session tokens travel between client and server.
type Transport interface {
	GetToken(r *http.Request) (string, error)
	SetToken(w http.ResponseWriter, token string, ttl time.Duration) error
	ClearToken(w http.ResponseWriter) error
}

// CookieTransport keeps the session token in an HttpOnly cookie.
type CookieTransport struct {
	name   string
	secure bool
}

// NewCookieTransport creates a cookie transport.
func NewCookieTransport(name string, secure bool) *CookieTransport {
	return &CookieTransport{name: name, secure: secure}
}

func (t *CookieTransport) GetToken(r *http.Request) (string, error) {
	c, err := r.Cookie(t.name)
	if err != nil || c.Value == "" {
		return "", ErrSessionNotFound
	}
	return c.Value, nil
}

func (t *CookieTransport) SetToken(w http.ResponseWriter, token string, ttl time.Duration) error {
	http.SetCookie(w, &http.Cookie{
		Name:     t.name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (t *CookieTransport) ClearToken(w http.ResponseWriter) error {
	http.SetCookie(w, &http.Cookie{
		Name:     t.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// HeaderTransport reads the token from a request header, "Bearer " prefixed
// by default. Used by API clients and scripts.
type HeaderTransport struct {
	headerName string
	prefix     string
}

// NewHeaderTransport creates a header transport.
func NewHeaderTransport(headerName string) *HeaderTransport {
	return &HeaderTransport{headerName: headerName, prefix: "Bearer "}
}

func (t *HeaderTransport) GetToken(r *http.Request) (string, error) {
	value := strings.TrimPrefix(r.Header.Get(t.headerName), t.prefix)
	if value == "" {
		return "", ErrSessionNotFound
	}
	return value, nil
}

func (t *HeaderTransport) SetToken(w http.ResponseWriter, token string, ttl time.Duration) error {
	w.Header().Set(t.headerName, t.prefix+token)
	if ttl > 0 {
		w.Header().Set(t.headerName+"-Expires", time.Now().Add(ttl).UTC().Format(time.RFC3339))
	}
	return nil
}

func (t *HeaderTransport) ClearToken(w http.ResponseWriter) error {
	w.Header().Del(t.headerName)
	w.Header().Del(t.headerName + "-Expires")
	return nil
}

// CompositeTransport reads from the first transport that has a token and
// writes through all of them.
type CompositeTransport []Transport

func (c CompositeTransport) GetToken(r *http.Request) (string, error) {
	for _, t := range c {
		if token, err := t.GetToken(r); err == nil {
			return token, nil
		}
	}
	return "", ErrSessionNotFound
}

func (c CompositeTransport) SetToken(w http.ResponseWriter, token string, ttl time.Duration) error {
	for _, t := range c {
		if err := t.SetToken(w, token, ttl); err != nil {
			return err
		}
	}
	return nil
}

func (c CompositeTransport) ClearToken(w http.ResponseWriter) error {
	for _, t := range c {
		if err := t.ClearToken(w); err != nil {
			return err
		}
	}
	return nil
}
