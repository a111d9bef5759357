package auth

import (
	"fmt"
	"strings"
	"time"
)

// Role is the closed set of permission tiers.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleManager  Role = "MANAGER"
	RoleEmployee Role = "EMPLOYEE"
)

// ParseRole maps a wire string onto the closed role set. The legacy
// "ROLE_" prefix emitted by earlier deployments is accepted.
func ParseRole(raw string) (Role, error) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	normalized = strings.TrimPrefix(normalized, "ROLE_")
	switch Role(normalized) {
	case RoleAdmin, RoleManager, RoleEmployee:
		return Role(normalized), nil
	}
	return "", fmt.Errorf("%w: %q (valid roles: ADMIN, MANAGER, EMPLOYEE)", ErrInvalidRole, raw)
}

// String implements fmt.Stringer.
func (r Role) String() string { return string(r) }

// User represents a registered principal with credentials and a role.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Enabled      bool      `json:"enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
