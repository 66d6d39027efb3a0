package identity

import "context"

// Repository is the user storage contract. Lookups return nil (not an error)
// when no record matches. Users are never hard-deleted; deactivation goes
// through Update with Active=false.
type Repository interface {
	List(ctx context.Context) ([]*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, id int64, patch UserPatch) (*User, error)
}
