package users

import "context"

// Repository stores user records. Implementations return ErrUserNotFound for
// missing records and ErrEmailTaken on a duplicate email. List is ordered by
// name, then ID.
type Repository interface {
	Insert(ctx context.Context, u *User) error
	Replace(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
}

// ChangeWatcher is implemented by repositories that can report writes made
// by other processes. Watch calls onChange after each change until ctx ends.
type ChangeWatcher interface {
	Watch(ctx context.Context, onChange func()) error
}
