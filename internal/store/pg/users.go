package pg

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"zenithcloud.org/internal/auth"
)

// Users implements auth.UserStore.
type Users struct {
	db *sql.DB
}

var _ auth.UserStore = (*Users)(nil)

func (s *Users) Create(ctx context.Context, u *auth.User) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	row := s.db.QueryRowContext(ctx, `
		insert into users (username, email, password_hash, role, enabled)
		values ($1, $2, $3, $4, $5)
		returning id, created_at, updated_at
	`, u.Username, u.Email, u.PasswordHash, string(u.Role), u.Enabled)
	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return duplicateFromConstraint(pgErr.ConstraintName, u)
		}
		return err
	}
	return nil
}

// duplicateFromConstraint names the colliding field from the unique
// constraint so the insert itself enforces uniqueness, not only the
// pre-checks.
func duplicateFromConstraint(constraint string, u *auth.User) error {
	if strings.Contains(constraint, "email") {
		return &auth.DuplicateError{Field: "email", Value: u.Email}
	}
	return &auth.DuplicateError{Field: "username", Value: u.Username}
}

func (s *Users) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	return s.find(ctx, `
		select id, username, email, password_hash, role, enabled, created_at, updated_at
		from users
		where username = $1
	`, username)
}

func (s *Users) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	return s.find(ctx, `
		select id, username, email, password_hash, role, enabled, created_at, updated_at
		from users
		where email = $1
	`, email)
}

func (s *Users) find(ctx context.Context, query string, arg any) (*auth.User, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	var (
		u    auth.User
		role string
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &u.Enabled, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Role = auth.Role(role)
	return &u, nil
}

func (s *Users) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return s.exists(ctx, `select exists(select 1 from users where username = $1)`, username)
}

func (s *Users) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, `select exists(select 1 from users where email = $1)`, email)
}

func (s *Users) exists(ctx context.Context, query string, arg any) (bool, error) {
	if s.db == nil {
		return false, errors.New("database connection unavailable")
	}
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, arg).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
