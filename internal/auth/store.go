package auth

import "context"

// UserStore describes persistence operations required by the identity
// manager. Implementations must enforce username/email uniqueness at
// write time and report violations as *DuplicateError, so a race between
// a passing pre-check and the insert still surfaces correctly.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
