package auth

import (
	"context"
	"errors"
	"strings"

	"zenithcloud.org/internal/obs"
)

const minPasswordLength = 6

// Service is the identity manager: it owns principal creation and login
// and delegates hashing and signing to the credential validator and the
// token service.
type Service struct {
	store  UserStore
	tokens *TokenService
}

// NewService constructs the identity manager.
func NewService(store UserStore, tokens *TokenService) (*Service, error) {
	if store == nil {
		return nil, errors.New("auth: user store is required")
	}
	if tokens == nil {
		return nil, errors.New("auth: token service is required")
	}
	return &Service{store: store, tokens: tokens}, nil
}

// Tokens exposes the underlying token service for middleware wiring.
func (s *Service) Tokens() *TokenService { return s.tokens }

// Register validates input fail-fast (first failing rule wins), enforces
// uniqueness, and stores a new enabled user with a hashed password.
func (s *Service) Register(ctx context.Context, username, email, password, role string) (*User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" {
		return nil, validationErrorf("username cannot be empty")
	}
	if strings.TrimSpace(password) == "" {
		return nil, validationErrorf("password cannot be empty")
	}
	if email == "" {
		return nil, validationErrorf("email cannot be empty")
	}

	taken, err := s.store.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, &DuplicateError{Field: "username", Value: username}
	}
	taken, err = s.store.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, &DuplicateError{Field: "email", Value: email}
	}

	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}
	parsedRole, err := ParseRole(role)
	if err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         parsedRole,
		Enabled:      true,
	}
	// The store's uniqueness constraint is authoritative; a duplicate
	// slipping past the pre-checks comes back as *DuplicateError here.
	if err := s.store.Create(ctx, user); err != nil {
		return nil, err
	}
	obs.LogEntry(map[string]any{
		"level":    "info",
		"msg":      "user registered",
		"username": user.Username,
		"role":     user.Role.String(),
	})
	return user, nil
}

// Login authenticates credentials and issues a signed token carrying the
// user's current role. Unknown username and wrong password return the
// same ErrInvalidCredentials; the enabled flag is checked only after the
// password matches.
func (s *Service) Login(ctx context.Context, username, password string) (string, *User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", nil, validationErrorf("username cannot be empty")
	}
	if strings.TrimSpace(password) == "" {
		return "", nil, validationErrorf("password cannot be empty")
	}

	user, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !user.Enabled {
		return "", nil, ErrAccountDisabled
	}

	token, err := s.tokens.Issue(user.Username, user.Role.String())
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// FindByUsername is a pass-through lookup; "not found" is an absent
// result, never an error.
func (s *Service) FindByUsername(ctx context.Context, username string) (*User, bool, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, false, nil
	}
	user, err := s.store.FindByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

// UsernameExists reports whether a username is already registered.
func (s *Service) UsernameExists(ctx context.Context, username string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return false, nil
	}
	return s.store.ExistsByUsername(ctx, username)
}
