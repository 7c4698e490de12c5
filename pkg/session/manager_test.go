package session_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/medstock/pkg/auth"
	"github.com/dmitrymomot/medstock/pkg/rbac"
	"github.com/dmitrymomot/medstock/pkg/session"
)

const testSecret = "test-secret-32-chars-long-123456"

type directory struct {
	mu      sync.Mutex
	byID    map[string]session.Profile
	failure error
}

func newDirectory(profiles ...session.Profile) *directory {
	d := &directory{byID: make(map[string]session.Profile)}
	for _, p := range profiles {
		d.byID[p.ID] = p
	}
	return d
}

func (d *directory) put(p session.Profile) {
	d.mu.Lock()
	d.byID[p.ID] = p
	d.mu.Unlock()
}

func (d *directory) fail(err error) {
	d.mu.Lock()
	d.failure = err
	d.mu.Unlock()
}

func (d *directory) ProfileByID(_ context.Context, id string) (*session.Profile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failure != nil {
		return nil, d.failure
	}
	if p, ok := d.byID[id]; ok {
		return &p, nil
	}
	return nil, session.ErrProfileNotFound
}

func (d *directory) ProfileByEmail(_ context.Context, email string) (*session.Profile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failure != nil {
		return nil, d.failure
	}
	for _, p := range d.byID {
		if strings.EqualFold(p.Email, email) {
			return &p, nil
		}
	}
	return nil, session.ErrProfileNotFound
}

func (d *directory) snapshot() []session.Profile {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]session.Profile, 0, len(d.byID))
	for _, p := range d.byID {
		out = append(out, p)
	}
	return out
}

type fixture struct {
	provider *auth.PasswordProvider
	dir      *directory
	manager  *session.Manager
}

func newFixture(t *testing.T, opts ...session.Option) *fixture {
	t.Helper()

	provider := auth.NewPasswordProvider(auth.NewMemoryStorage(), testSecret,
		auth.WithBcryptCost(bcrypt.MinCost),
	)
	dir := newDirectory()
	store := session.NewMemoryStore(0)
	t.Cleanup(func() { _ = store.Close() })

	opts = append([]session.Option{session.WithStore(store)}, opts...)
	return &fixture{
		provider: provider,
		dir:      dir,
		manager:  session.New(provider, dir, opts...),
	}
}

func (f *fixture) signUp(t *testing.T, email string) *auth.Identity {
	t.Helper()
	id, err := f.provider.SignUp(context.Background(), email, "s3cret-pass", "Test User")
	require.NoError(t, err)
	return id
}

func TestManager_SignInJoin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("joins user record by uid", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		id := f.signUp(t, "dho@health.go.tz")
		f.dir.put(session.Profile{ID: id.UID, Name: "Neema", Email: id.Email, Role: rbac.RoleDistrictHealthOfficer, Active: true, District: "Kilosa"})

		s, err := f.manager.SignIn(ctx, "dho@health.go.tz", "s3cret-pass")
		require.NoError(t, err)
		assert.Equal(t, session.SourceUID, s.Source)
		assert.Equal(t, rbac.RoleDistrictHealthOfficer, s.Role())
		assert.Equal(t, "Kilosa", s.Profile.District)
		assert.NotEmpty(t, s.Token)
		assert.NotEqual(t, s.Token, s.IdentityToken)
	})

	t.Run("falls back to email when uid misses", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.signUp(t, "admin@health.go.tz")
		f.dir.put(session.Profile{ID: "record-1", Name: "Admin", Email: "admin@health.go.tz", Role: rbac.RoleAdmin, Active: true})

		s, err := f.manager.SignIn(ctx, "admin@health.go.tz", "s3cret-pass")
		require.NoError(t, err)
		assert.Equal(t, session.SourceEmail, s.Source)
		assert.Equal(t, rbac.RoleAdmin, s.Role())
		assert.Equal(t, "record-1", s.Profile.ID)
	})

	t.Run("uses seed identity when directory misses", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, session.WithSeeds(session.Profile{
			ID: "seed-rs", Name: "Seed Supervisor", Email: "Supervisor@Health.go.tz",
			Role: rbac.RoleRegionalSupervisor, Active: true, Region: "Morogoro",
		}))
		f.signUp(t, "supervisor@health.go.tz")

		s, err := f.manager.SignIn(ctx, "supervisor@health.go.tz", "s3cret-pass")
		require.NoError(t, err)
		assert.Equal(t, session.SourceSeed, s.Source)
		assert.Equal(t, rbac.RoleRegionalSupervisor, s.Role())
	})

	t.Run("synthesizes least privileged profile when everything misses", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		id := f.signUp(t, "newcomer@health.go.tz")

		s, err := f.manager.SignIn(ctx, "newcomer@health.go.tz", "s3cret-pass")
		require.NoError(t, err)
		assert.Equal(t, session.SourceSynthesized, s.Source)
		assert.Equal(t, rbac.RoleVillageHealthWorker, s.Role())
		assert.Equal(t, id.UID, s.Profile.ID)
		assert.True(t, s.Profile.Active)
		assert.NotEqual(t, rbac.RoleAdmin, s.Role())
	})

	t.Run("refuses inactive record", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		id := f.signUp(t, "old@health.go.tz")
		f.dir.put(session.Profile{ID: id.UID, Email: id.Email, Role: rbac.RoleFacilityManager, Active: false})

		_, err := f.manager.SignIn(ctx, "old@health.go.tz", "s3cret-pass")
		assert.ErrorIs(t, err, session.ErrAccountDisabled)
	})

	t.Run("propagates provider failure", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.signUp(t, "user@health.go.tz")

		_, err := f.manager.SignIn(ctx, "user@health.go.tz", "wrong-password")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("wraps directory failure", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.signUp(t, "user@health.go.tz")
		f.dir.fail(errors.New("connection refused"))

		_, err := f.manager.SignIn(ctx, "user@health.go.tz", "s3cret-pass")
		assert.ErrorIs(t, err, session.ErrDirectoryUnavailable)
	})

	t.Run("caps expiry at max lifetime", func(t *testing.T) {
		t.Parallel()
		cfg := session.DefaultConfig()
		cfg.MaxLifetime = time.Hour
		f := newFixture(t, session.WithConfig(cfg))
		f.signUp(t, "user@health.go.tz")

		before := time.Now()
		s, err := f.manager.SignIn(ctx, "user@health.go.tz", "s3cret-pass")
		require.NoError(t, err)
		assert.WithinDuration(t, before.Add(time.Hour), s.ExpiresAt, 5*time.Second)
	})
}

func TestManager_SignOut(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	f.signUp(t, "user@health.go.tz")

	s, err := f.manager.SignIn(ctx, "user@health.go.tz", "s3cret-pass")
	require.NoError(t, err)

	n, err := f.manager.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, f.manager.SignOut(ctx, s.Token))

	n, err = f.manager.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = f.manager.Restore(ctx, s.Token)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	_, err = f.provider.Verify(ctx, s.IdentityToken)
	assert.ErrorIs(t, err, auth.ErrTokenRevoked)

	assert.NoError(t, f.manager.SignOut(ctx, "unknown-token"))
}

func TestManager_Restore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("role change applies on next restore", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		id := f.signUp(t, "fm@health.go.tz")
		f.dir.put(session.Profile{ID: id.UID, Email: id.Email, Role: rbac.RoleFacilityManager, Active: true})

		s, err := f.manager.SignIn(ctx, "fm@health.go.tz", "s3cret-pass")
		require.NoError(t, err)

		var events []session.Event
		unsubscribe := f.manager.Subscribe(func(e session.Event) { events = append(events, e) })
		defer unsubscribe()

		restored, err := f.manager.Restore(ctx, s.Token)
		require.NoError(t, err)
		assert.Equal(t, rbac.RoleFacilityManager, restored.Role())

		f.dir.put(session.Profile{ID: id.UID, Email: id.Email, Role: rbac.RoleDistrictHealthOfficer, Active: true})

		restored, err = f.manager.Restore(ctx, s.Token)
		require.NoError(t, err)
		assert.Equal(t, rbac.RoleDistrictHealthOfficer, restored.Role())

		require.Len(t, events, 2)
		assert.Equal(t, session.EventRestored, events[0].Type)
		assert.Equal(t, session.EventRoleChanged, events[1].Type)
		assert.Equal(t, rbac.RoleFacilityManager, events[1].PreviousRole)
		assert.Equal(t, rbac.RoleDistrictHealthOfficer, events[1].Session.Role())

		again, err := f.manager.Restore(ctx, s.Token)
		require.NoError(t, err)
		assert.Equal(t, rbac.RoleDistrictHealthOfficer, again.Role())
		assert.Equal(t, session.EventRestored, events[2].Type)
	})

	t.Run("deactivated user is signed out", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		id := f.signUp(t, "vhw@health.go.tz")
		f.dir.put(session.Profile{ID: id.UID, Email: id.Email, Role: rbac.RoleVillageHealthWorker, Active: true})

		s, err := f.manager.SignIn(ctx, "vhw@health.go.tz", "s3cret-pass")
		require.NoError(t, err)

		f.dir.put(session.Profile{ID: id.UID, Email: id.Email, Role: rbac.RoleVillageHealthWorker, Active: false})

		_, err = f.manager.Restore(ctx, s.Token)
		assert.ErrorIs(t, err, session.ErrAccountDisabled)

		_, err = f.manager.Restore(ctx, s.Token)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})

	t.Run("revoked identity expires the session", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.signUp(t, "user@health.go.tz")

		s, err := f.manager.SignIn(ctx, "user@health.go.tz", "s3cret-pass")
		require.NoError(t, err)
		require.NoError(t, f.provider.SignOut(ctx, s.IdentityToken))

		_, err = f.manager.Restore(ctx, s.Token)
		assert.ErrorIs(t, err, session.ErrSessionExpired)
	})
}

func TestManager_Subscribe(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	f.signUp(t, "user@health.go.tz")

	var order []string
	unsubscribeA := f.manager.Subscribe(func(e session.Event) { order = append(order, "a:"+string(e.Type)) })
	unsubscribeB := f.manager.Subscribe(func(e session.Event) { order = append(order, "b:"+string(e.Type)) })

	s, err := f.manager.SignIn(ctx, "user@health.go.tz", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, []string{"a:signed_in", "b:signed_in"}, order)

	unsubscribeA()
	unsubscribeA()

	require.NoError(t, f.manager.SignOut(ctx, s.Token))
	assert.Equal(t, []string{"a:signed_in", "b:signed_in", "b:signed_out"}, order)

	unsubscribeB()
	_, err = f.manager.SignIn(ctx, "user@health.go.tz", "s3cret-pass")
	require.NoError(t, err)
	assert.Len(t, order, 3)
}

func TestManager_Apply(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("pushes role changes and signs out removed users", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		a := f.signUp(t, "a@health.go.tz")
		b := f.signUp(t, "b@health.go.tz")
		f.dir.put(session.Profile{ID: a.UID, Email: a.Email, Role: rbac.RoleFacilityManager, Active: true})
		f.dir.put(session.Profile{ID: b.UID, Email: b.Email, Role: rbac.RoleFacilityManager, Active: true})

		sa, err := f.manager.SignIn(ctx, "a@health.go.tz", "s3cret-pass")
		require.NoError(t, err)
		sb, err := f.manager.SignIn(ctx, "b@health.go.tz", "s3cret-pass")
		require.NoError(t, err)

		var events []session.Event
		defer f.manager.Subscribe(func(e session.Event) { events = append(events, e) })()

		snapshot := []session.Profile{
			{ID: a.UID, Email: a.Email, Role: rbac.RoleRegionalSupervisor, Active: true},
		}
		require.NoError(t, f.manager.Apply(ctx, snapshot))

		types := map[session.EventType]int{}
		for _, e := range events {
			types[e.Type]++
		}
		assert.Equal(t, 1, types[session.EventRoleChanged])
		assert.Equal(t, 1, types[session.EventSignedOut])

		_, err = f.manager.Restore(ctx, sb.Token)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)

		f.dir.put(snapshot[0])
		restored, err := f.manager.Restore(ctx, sa.Token)
		require.NoError(t, err)
		assert.Equal(t, rbac.RoleRegionalSupervisor, restored.Role())
	})

	t.Run("rejoins synthesized session when record appears", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.signUp(t, "late@health.go.tz")

		s, err := f.manager.SignIn(ctx, "late@health.go.tz", "s3cret-pass")
		require.NoError(t, err)
		require.Equal(t, session.SourceSynthesized, s.Source)

		require.NoError(t, f.manager.Apply(ctx, []session.Profile{}))

		f.dir.put(session.Profile{ID: "record-9", Email: "late@health.go.tz", Role: rbac.RoleFacilityManager, Active: true})
		require.NoError(t, f.manager.Apply(ctx, f.dir.snapshot()))

		restored, err := f.manager.Restore(ctx, s.Token)
		require.NoError(t, err)
		assert.Equal(t, rbac.RoleFacilityManager, restored.Role())
		assert.Equal(t, session.SourceEmail, restored.Source)
	})

	t.Run("watch stops when channel closes", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		ch := make(chan []session.Profile, 1)
		ch <- nil
		close(ch)
		assert.NoError(t, f.manager.Watch(ctx, ch))
	})

	t.Run("watch stops on context cancel", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		assert.ErrorIs(t, f.manager.Watch(cctx, make(chan []session.Profile)), context.Canceled)
	})
}
