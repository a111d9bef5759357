package directory

import (
	"fmt"
	"strings"
	"time"
)

// EmployeeStatus is the lifecycle state of an employee record.
type EmployeeStatus string

const (
	StatusActive   EmployeeStatus = "ACTIVE"
	StatusInactive EmployeeStatus = "INACTIVE"
	StatusOnLeave  EmployeeStatus = "ON_LEAVE"
)

// ParseStatus maps a wire string onto the status set.
func ParseStatus(raw string) (EmployeeStatus, error) {
	switch EmployeeStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case StatusActive:
		return StatusActive, nil
	case StatusInactive:
		return StatusInactive, nil
	case StatusOnLeave:
		return StatusOnLeave, nil
	}
	return "", fmt.Errorf("%w: invalid status %q", ErrInvalidInput, raw)
}

// Department is an organizational unit. Membership in a department is
// the basis for manager-scoped visibility.
type Department struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Employee links a person to a department and to their identity-service
// user account. An employee belongs to at most one department at a time.
type Employee struct {
	ID           int64          `json:"id"`
	FirstName    string         `json:"first_name"`
	LastName     string         `json:"last_name"`
	Email        string         `json:"email"`
	Position     string         `json:"position,omitempty"`
	Salary       int64          `json:"salary,omitempty"`
	PhoneNumber  string         `json:"phone_number,omitempty"`
	Status       EmployeeStatus `json:"status"`
	UserID       int64          `json:"user_id"`
	DepartmentID int64          `json:"department_id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
