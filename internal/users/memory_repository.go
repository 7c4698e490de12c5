package users

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
)

// MemoryRepository keeps records in a map. Safe for concurrent use.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]*User
}

// NewMemoryRepository returns a repository seeded with users.
func NewMemoryRepository(users ...User) *MemoryRepository {
	r := &MemoryRepository{users: make(map[string]*User, len(users))}
	for i := range users {
		r.users[users[i].ID] = users[i].clone()
	}
	return r
}

func (r *MemoryRepository) Insert(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[u.ID]; ok {
		return ErrInvalidInput
	}
	if r.emailTakenLocked(u.Email, u.ID) {
		return ErrEmailTaken
	}
	r.users[u.ID] = u.clone()
	return nil
}

func (r *MemoryRepository) Replace(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[u.ID]; !ok {
		return ErrUserNotFound
	}
	if r.emailTakenLocked(u.Email, u.ID) {
		return ErrEmailTaken
	}
	r.users[u.ID] = u.clone()
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u.clone(), nil
}

func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, ErrUserNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return u.clone(), nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *MemoryRepository) List(_ context.Context) ([]User, error) {
	r.mu.RLock()
	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u.clone())
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b User) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (r *MemoryRepository) emailTakenLocked(email, exceptID string) bool {
	if email == "" {
		return false
	}
	for id, u := range r.users {
		if id != exceptID && u.Email == email {
			return true
		}
	}
	return false
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
