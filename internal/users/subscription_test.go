package users_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/medstock/internal/users"
	"github.com/dmitrymomot/medstock/pkg/rbac"
	"github.com/dmitrymomot/medstock/pkg/session"
)

func seeded() *users.MemoryRepository {
	return users.NewMemoryRepository(
		users.User{ID: "u1", Name: "Baraka", Phone: "+255700000011", Role: rbac.RoleAdmin, Status: users.StatusActive},
		users.User{ID: "u2", Name: "Neema", Phone: "+255700000012", Role: rbac.RoleVillageHealthWorker, Status: users.StatusActive},
	)
}

func receive(t *testing.T, ch <-chan []users.User) []users.User {
	t.Helper()
	select {
	case list, ok := <-ch:
		require.True(t, ok, "channel closed")
		return list
	case <-time.After(time.Second):
		t.Fatal("no snapshot received")
		return nil
	}
}

func ids(list []users.User) []string {
	out := make([]string, len(list))
	for i, u := range list {
		out[i] = u.ID
	}
	return out
}

func TestSubscribe_DeliversCurrentSnapshot(t *testing.T) {
	t.Parallel()

	svc := users.NewService(seeded())
	t.Cleanup(func() { _ = svc.Close() })

	sub := svc.Subscribe(t.Context())
	defer sub.Unsubscribe()

	assert.Equal(t, []string{"u1", "u2"}, ids(receive(t, sub.Updates())))
}

func TestSubscribe_ConflatesToLatest(t *testing.T) {
	t.Parallel()

	svc := users.NewService(seeded())
	t.Cleanup(func() { _ = svc.Close() })

	sub := svc.Subscribe(t.Context())
	defer sub.Unsubscribe()
	receive(t, sub.Updates())

	in := users.CreateInput{Name: "Zawadi", Phone: "+255700000013", Role: string(rbac.RoleFacilityManager)}
	_, err := svc.Create(t.Context(), in)
	require.NoError(t, err)
	in.Name = "Zuberi"
	_, err = svc.Create(t.Context(), in)
	require.NoError(t, err)

	var got [][]users.User
	for {
		select {
		case list := <-sub.Updates():
			got = append(got, list)
			continue
		case <-time.After(100 * time.Millisecond):
		}
		break
	}

	require.NotEmpty(t, got)
	assert.LessOrEqual(t, len(got), 2)
	assert.Len(t, got[len(got)-1], 4)
}

// stallingRepo holds the first armed List until release is closed, after it
// has already read the store.
type stallingRepo struct {
	*users.MemoryRepository
	armed   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func (r *stallingRepo) List(ctx context.Context) ([]users.User, error) {
	list, err := r.MemoryRepository.List(ctx)
	if r.armed.CompareAndSwap(true, false) {
		close(r.entered)
		<-r.release
	}
	return list, err
}

func TestSnapshotFollowsLatestWrite(t *testing.T) {
	t.Parallel()

	repo := &stallingRepo{
		MemoryRepository: seeded(),
		entered:          make(chan struct{}),
		release:          make(chan struct{}),
	}
	svc := users.NewService(repo)
	t.Cleanup(func() { _ = svc.Close() })

	first := svc.Subscribe(t.Context())
	receive(t, first.Updates())
	first.Unsubscribe()

	repo.armed.Store(true)

	var wg sync.WaitGroup
	create := func(name, phone string) {
		defer wg.Done()
		_, err := svc.Create(context.Background(), users.CreateInput{
			Name: name, Phone: phone, Role: string(rbac.RoleFacilityManager),
		})
		assert.NoError(t, err)
	}

	wg.Add(1)
	go create("Zawadi", "+255700000013")
	select {
	case <-repo.entered:
	case <-time.After(time.Second):
		t.Fatal("first refresh never read the store")
	}

	wg.Add(1)
	go create("Zuberi", "+255700000014")
	require.Eventually(t, func() bool {
		list, err := repo.MemoryRepository.List(t.Context())
		return err == nil && len(list) == 4
	}, time.Second, 5*time.Millisecond)

	close(repo.release)
	wg.Wait()

	sub := svc.Subscribe(t.Context())
	defer sub.Unsubscribe()
	assert.Len(t, receive(t, sub.Updates()), 4)
}

func TestUnsubscribe(t *testing.T) {
	t.Parallel()

	svc := users.NewService(seeded())
	t.Cleanup(func() { _ = svc.Close() })

	sub := svc.Subscribe(t.Context())
	receive(t, sub.Updates())

	sub.Unsubscribe()
	sub.Unsubscribe()

	select {
	case _, ok := <-sub.Updates():
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("updates channel not closed")
	}
}

func TestProfilesFeedReconcilesSessions(t *testing.T) {
	t.Parallel()

	svc := users.NewService(seeded())
	t.Cleanup(func() { _ = svc.Close() })

	ch := svc.Profiles(t.Context())
	select {
	case profiles := <-ch:
		require.Len(t, profiles, 2)
		assert.Equal(t, session.Profile{
			ID: "u1", Name: "Baraka", Phone: "+255700000011", Role: rbac.RoleAdmin, Active: true,
		}, profiles[0])
	case <-time.After(time.Second):
		t.Fatal("no profiles received")
	}
}

func TestDirectory(t *testing.T) {
	t.Parallel()

	repo := seeded()
	require.NoError(t, repo.Replace(t.Context(), &users.User{
		ID: "u2", Name: "Neema", Email: "neema@example.org", Phone: "+255700000012",
		Role: rbac.RoleVillageHealthWorker, Status: users.StatusInactive,
	}))
	svc := users.NewService(repo)
	t.Cleanup(func() { _ = svc.Close() })
	dir := users.NewDirectory(svc)

	p, err := dir.ProfileByID(t.Context(), "u1")
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleAdmin, p.Role)

	p, err = dir.ProfileByEmail(t.Context(), "NEEMA@example.org")
	require.NoError(t, err)
	assert.Equal(t, "u2", p.ID)
	assert.False(t, p.Active)

	_, err = dir.ProfileByID(t.Context(), "nope")
	assert.ErrorIs(t, err, session.ErrProfileNotFound)
}
