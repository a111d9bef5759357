package pg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"zenithcloud.org/internal/auth"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewWithDB(db), mock
}

func TestUsersCreate(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery("insert into users").
		WithArgs("jdoe", "jdoe@example.com", "hash", "EMPLOYEE", true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(7), now, now))

	user := &auth.User{
		Username:     "jdoe",
		Email:        "jdoe@example.com",
		PasswordHash: "hash",
		Role:         auth.RoleEmployee,
		Enabled:      true,
	}
	if err := store.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if user.ID != 7 {
		t.Fatalf("id not populated: %d", user.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUsersCreateUniqueViolation(t *testing.T) {
	cases := []struct {
		constraint string
		wantField  string
	}{
		{constraint: "users_username_key", wantField: "username"},
		{constraint: "users_email_key", wantField: "email"},
	}
	for _, tc := range cases {
		store, mock := newMockStore(t)
		mock.ExpectQuery("insert into users").
			WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: tc.constraint})

		err := store.Users().Create(context.Background(), &auth.User{
			Username: "jdoe",
			Email:    "jdoe@example.com",
			Role:     auth.RoleEmployee,
		})
		var duplicate *auth.DuplicateError
		if !errors.As(err, &duplicate) {
			t.Fatalf("%s: expected DuplicateError, got %v", tc.constraint, err)
		}
		if duplicate.Field != tc.wantField {
			t.Fatalf("%s: field = %q, want %q", tc.constraint, duplicate.Field, tc.wantField)
		}
	}
}

func TestUsersFindByUsername(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "role", "enabled", "created_at", "updated_at"}).
		AddRow(int64(7), "jdoe", "jdoe@example.com", "hash", "MANAGER", true, now, now)
	mock.ExpectQuery("select id, username, email, password_hash, role, enabled, created_at, updated_at.*from users.*where username").
		WithArgs("jdoe").
		WillReturnRows(rows)

	user, err := store.Users().FindByUsername(context.Background(), "jdoe")
	if err != nil {
		t.Fatalf("FindByUsername: %v", err)
	}
	if user.Role != auth.RoleManager || user.Email != "jdoe@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestUsersFindByUsernameNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("select id, username, email").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := store.Users().FindByUsername(context.Background(), "ghost"); !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("expected auth.ErrNotFound, got %v", err)
	}
}

func TestUsersExists(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("select exists").
		WithArgs("jdoe").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := store.Users().ExistsByUsername(context.Background(), "jdoe")
	if err != nil {
		t.Fatalf("ExistsByUsername: %v", err)
	}
	if !exists {
		t.Fatal("expected exists")
	}
}
