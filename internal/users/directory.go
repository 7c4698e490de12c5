package users

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/medstock/pkg/logger"
	"github.com/dmitrymomot/medstock/pkg/session"
)

// Directory lets the session layer join identities to user records.
type Directory struct {
	svc *Service
}

// NewDirectory returns a session.Directory backed by svc.
func NewDirectory(svc *Service) *Directory {
	return &Directory{svc: svc}
}

var _ session.Directory = (*Directory)(nil)

func (d *Directory) ProfileByID(ctx context.Context, id string) (*session.Profile, error) {
	return profile(d.svc.Get(ctx, id))
}

func (d *Directory) ProfileByEmail(ctx context.Context, email string) (*session.Profile, error) {
	return profile(d.svc.GetByEmail(ctx, email))
}

func profile(u *User, err error) (*session.Profile, error) {
	if errors.Is(err, ErrUserNotFound) {
		return nil, session.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	p := u.Profile()
	return &p, nil
}

// LastLoginObserver records sign-ins of sessions joined to a stored record.
// Register it with session.Manager.Subscribe.
func LastLoginObserver(svc *Service, log *slog.Logger) func(session.Event) {
	if log == nil {
		log = logger.Noop()
	}
	return func(e session.Event) {
		if e.Type != session.EventSignedIn || e.Session == nil {
			return
		}
		if e.Session.Source != session.SourceUID && e.Session.Source != session.SourceEmail {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := svc.TouchLastLogin(ctx, e.Session.Profile.ID); err != nil {
			log.WarnContext(ctx, "last login not recorded", logger.UserID(e.Session.Profile.ID), logger.Error(err))
		}
	}
}
