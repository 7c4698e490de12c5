package users

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/medstock/internal/events"
	"github.com/dmitrymomot/medstock/pkg/auth"
	"github.com/dmitrymomot/medstock/pkg/broadcast"
	"github.com/dmitrymomot/medstock/pkg/logger"
	"github.com/dmitrymomot/medstock/pkg/rbac"
	"github.com/dmitrymomot/medstock/pkg/sanitizer"
	"github.com/dmitrymomot/medstock/pkg/validator"
)

// MaxNameLength bounds display names.
const MaxNameLength = 120

// MinPasswordLength applies when Create also opens an identity account.
const MinPasswordLength = 8

// AccountProvider opens identity accounts for new users.
type AccountProvider interface {
	SignUp(ctx context.Context, email, password, displayName string) (*auth.Identity, error)
}

// AccountDeleter is optionally implemented by an AccountProvider.
type AccountDeleter interface {
	DeleteAccount(ctx context.Context, uid string) error
}

// CreateInput is the data for a new user.
type CreateInput struct {
	Name          string `json:"name" form:"name"`
	Email         string `json:"email" form:"email"`
	Phone         string `json:"phone" form:"phone"`
	Role          string `json:"role" form:"role"`
	Status        string `json:"status" form:"status"`
	FacilityName  string `json:"facility_name" form:"facility_name"`
	Region        string `json:"region" form:"region"`
	District      string `json:"district" form:"district"`
	CreateAccount bool   `json:"create_account" form:"create_account"`
	Password      string `json:"password" form:"password"`
}

// UpdateInput replaces a user's editable details. Role and status have
// their own operations.
type UpdateInput struct {
	Name         string `json:"name" form:"name"`
	Email        string `json:"email" form:"email"`
	Phone        string `json:"phone" form:"phone"`
	FacilityName string `json:"facility_name" form:"facility_name"`
	Region       string `json:"region" form:"region"`
	District     string `json:"district" form:"district"`
}

// Service is the users module entry point. Safe for concurrent use.
type Service struct {
	repo      Repository
	accounts  AccountProvider
	publisher events.Publisher
	catalog   *rbac.Catalog
	snapshots *broadcast.MemoryBroadcaster[[]User]
	log       *slog.Logger
	now       func() time.Time

	// refreshMu orders List and Broadcast so a newer read is never
	// overwritten by an older one.
	refreshMu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithAccounts enables CreateInput.CreateAccount.
func WithAccounts(p AccountProvider) Option {
	return func(s *Service) { s.accounts = p }
}

// WithPublisher sets the domain event publisher.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithCatalog sets the catalog roles are validated against.
func WithCatalog(c *rbac.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a users service over repo.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		publisher: events.Noop{},
		catalog:   rbac.Default(),
		snapshots: broadcast.NewMemoryBroadcaster[[]User](),
		log:       logger.Noop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("users"))
	return s
}

// Close ends every subscription.
func (s *Service) Close() error {
	return s.snapshots.Close()
}

// Create validates in, optionally opens an identity account and stores the
// record. When an account is opened its uid becomes the user ID.
func (s *Service) Create(ctx context.Context, in CreateInput) (*User, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = sanitizer.NormalizeWhitespace(in.Name)
	in.Phone = sanitizer.NormalizePhone(in.Phone)
	if in.Status == "" {
		in.Status = string(StatusActive)
	}

	if err := validator.Apply(
		validator.Required("name", in.Name),
		validator.MaxLen("name", in.Name, MaxNameLength),
		validator.Required("phone", in.Phone),
		validator.When(in.Phone != "", validator.ValidPhone("phone", in.Phone)),
		validator.When(in.Email != "", validator.ValidEmail("email", in.Email)),
		validator.ValidRole("role", in.Role, s.roleNames()),
		validator.OneOf("status", in.Status, []string{string(StatusActive), string(StatusInactive)}),
		validator.When(in.CreateAccount, validator.Required("email", in.Email)),
		validator.When(in.CreateAccount, validator.MinLen("password", in.Password, MinPasswordLength)),
	); err != nil {
		return nil, err
	}

	if in.Email != "" {
		if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
			return nil, ErrEmailTaken
		} else if !errors.Is(err, ErrUserNotFound) {
			return nil, dataErr(err)
		}
	}

	id := uuid.NewString()
	if in.CreateAccount {
		if s.accounts == nil {
			return nil, errors.Join(ErrAccountCreation, errors.New("no identity provider configured"))
		}
		identity, err := s.accounts.SignUp(ctx, in.Email, in.Password, in.Name)
		if err != nil {
			if errors.Is(err, auth.ErrEmailAlreadyExists) {
				return nil, errors.Join(ErrEmailTaken, err)
			}
			return nil, errors.Join(ErrAccountCreation, err)
		}
		id = identity.UID
	}

	now := s.now().UTC()
	u := &User{
		ID:           id,
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		Role:         rbac.Role(in.Role),
		Status:       Status(in.Status),
		FacilityName: strings.TrimSpace(in.FacilityName),
		Region:       strings.TrimSpace(in.Region),
		District:     strings.TrimSpace(in.District),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	normalizeLocation(u)

	if err := s.repo.Insert(ctx, u); err != nil {
		if in.CreateAccount {
			s.rollbackAccount(ctx, id)
		}
		return nil, dataErr(err)
	}

	s.log.InfoContext(ctx, "user created", logger.UserID(u.ID), logger.Role(u.Role))
	s.publish(ctx, events.UserCreated, u.ID, u)
	s.refresh(ctx)
	return u.clone(), nil
}

// Update replaces the editable details of user id.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*User, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = sanitizer.NormalizeWhitespace(in.Name)
	in.Phone = sanitizer.NormalizePhone(in.Phone)

	if err := validator.Apply(
		validator.Required("name", in.Name),
		validator.MaxLen("name", in.Name, MaxNameLength),
		validator.Required("phone", in.Phone),
		validator.When(in.Phone != "", validator.ValidPhone("phone", in.Phone)),
		validator.When(in.Email != "", validator.ValidEmail("email", in.Email)),
	); err != nil {
		return nil, err
	}

	return s.mutate(ctx, id, events.UserUpdated, func(u *User) {
		u.Name = in.Name
		u.Email = in.Email
		u.Phone = in.Phone
		u.FacilityName = strings.TrimSpace(in.FacilityName)
		u.Region = strings.TrimSpace(in.Region)
		u.District = strings.TrimSpace(in.District)
	})
}

// AssignRole changes the role of user id. Location fields that do not apply
// to the new role are cleared.
func (s *Service) AssignRole(ctx context.Context, id, role string) (*User, error) {
	if err := validator.Apply(validator.ValidRole("role", role, s.roleNames())); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, events.UserRoleAssigned, func(u *User) {
		u.Role = rbac.Role(role)
	})
}

// SetStatus activates or deactivates user id.
func (s *Service) SetStatus(ctx context.Context, id string, status Status) (*User, error) {
	if !status.Valid() {
		return nil, validator.ValidationErrors{{
			Field:   "status",
			Message: "must be one of: active, inactive",
			Code:    "one_of",
		}}
	}
	return s.mutate(ctx, id, events.UserStatusChanged, func(u *User) {
		u.Status = status
	})
}

// ToggleStatus flips user id between active and inactive.
func (s *Service) ToggleStatus(ctx context.Context, id string) (*User, error) {
	return s.mutate(ctx, id, events.UserStatusChanged, func(u *User) {
		if u.Active() {
			u.Status = StatusInactive
		} else {
			u.Status = StatusActive
		}
	})
}

// Delete removes user id and, when possible, its identity account.
func (s *Service) Delete(ctx context.Context, id string) error {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dataErr(err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return dataErr(err)
	}

	if d, ok := s.accounts.(AccountDeleter); ok {
		if err := d.DeleteAccount(ctx, id); err != nil && !errors.Is(err, auth.ErrCredentialNotFound) {
			s.log.WarnContext(ctx, "identity account not deleted", logger.UserID(id), logger.Error(err))
		}
	}

	s.log.InfoContext(ctx, "user deleted", logger.UserID(id))
	s.publish(ctx, events.UserDeleted, id, u)
	s.refresh(ctx)
	return nil
}

// Get returns user id.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, dataErr(err)
	}
	return u, nil
}

// GetByEmail returns the user with email, compared case-insensitively.
func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, dataErr(err)
	}
	return u, nil
}

// List returns every user ordered by name.
func (s *Service) List(ctx context.Context) ([]User, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, dataErr(err)
	}
	return list, nil
}

// TouchLastLogin records a successful sign-in for user id. No event is published.
func (s *Service) TouchLastLogin(ctx context.Context, id string) error {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dataErr(err)
	}
	now := s.now().UTC()
	u.LastLogin = &now
	if err := s.repo.Replace(ctx, u); err != nil {
		return dataErr(err)
	}
	s.refresh(ctx)
	return nil
}

// Bootstrap creates in as an administrator with an identity account when no
// user exists yet. It reports whether a record was created.
func (s *Service) Bootstrap(ctx context.Context, in CreateInput) (bool, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return false, dataErr(err)
	}
	if len(list) > 0 {
		return false, nil
	}
	in.Role = string(rbac.RoleAdmin)
	in.Status = string(StatusActive)
	in.CreateAccount = true
	if _, err := s.Create(ctx, in); err != nil {
		return false, err
	}
	return true, nil
}

// Run keeps snapshots current with writes made outside this process. It
// returns nil at once if the repository cannot report changes.
func (s *Service) Run(ctx context.Context) error {
	w, ok := s.repo.(ChangeWatcher)
	if !ok {
		return nil
	}
	return w.Watch(ctx, func() { s.refresh(ctx) })
}

func (s *Service) mutate(ctx context.Context, id, eventType string, apply func(*User)) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, dataErr(err)
	}
	before := *u

	apply(u)
	normalizeLocation(u)
	u.UpdatedAt = s.now().UTC()

	if err := s.repo.Replace(ctx, u); err != nil {
		return nil, dataErr(err)
	}

	attrs := []any{logger.UserID(u.ID), logger.Event(eventType)}
	if before.Role != u.Role {
		attrs = append(attrs, slog.String("previous_role", string(before.Role)), logger.Role(u.Role))
	}
	s.log.InfoContext(ctx, "user changed", attrs...)
	s.publish(ctx, eventType, u.ID, u)
	s.refresh(ctx)
	return u.clone(), nil
}

func (s *Service) publish(ctx context.Context, eventType, subject string, u *User) {
	ev, err := events.New(eventType, subject, u)
	if err == nil {
		err = s.publisher.Publish(ctx, ev)
	}
	if err != nil {
		s.log.WarnContext(ctx, "event not published", logger.Event(eventType), logger.Error(err))
	}
}

// refresh broadcasts the full user list. A failed read keeps the previous snapshot.
func (s *Service) refresh(ctx context.Context) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	list, err := s.repo.List(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "users snapshot not refreshed", logger.Error(err))
		return
	}
	_ = s.snapshots.Broadcast(ctx, broadcast.Message[[]User]{Data: list})
}

func (s *Service) rollbackAccount(ctx context.Context, uid string) {
	d, ok := s.accounts.(AccountDeleter)
	if !ok {
		return
	}
	if err := d.DeleteAccount(context.WithoutCancel(ctx), uid); err != nil {
		s.log.ErrorContext(ctx, "orphaned identity account", logger.UserID(uid), logger.Error(err))
	}
}

func (s *Service) roleNames() []string {
	roles := s.catalog.Roles()
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

// dataErr passes domain errors through and wraps the rest as ErrDataAccess.
func dataErr(err error) error {
	switch {
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrEmailTaken),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrDataAccess):
		return err
	default:
		return errors.Join(ErrDataAccess, err)
	}
}
