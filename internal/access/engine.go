// Package access decides whether an authenticated identity may act on an
// employee or department resource. Denial is a returned outcome, never an
// error; errors mean the decision could not be determined.
package access

import (
	"context"
	"errors"

	"zenithcloud.org/internal/auth"
	"zenithcloud.org/internal/directory"
)

// Directory is the read-only view of organizational membership the
// engine consults. Missing records surface as directory.ErrNotFound.
type Directory interface {
	// EmployeeByUsername resolves the caller's own employee record via
	// the username carried in their token (employee usernames are the
	// local part of the employee email).
	EmployeeByUsername(ctx context.Context, username string) (*directory.Employee, error)
	// Employee resolves a target employee record by id.
	Employee(ctx context.Context, id int64) (*directory.Employee, error)
}

// Engine is a state-free decision function over the three role tiers
// plus department scoping. It never mutates data.
type Engine struct {
	dir Directory
}

// NewEngine constructs an Engine over a directory reader.
func NewEngine(dir Directory) (*Engine, error) {
	if dir == nil {
		return nil, errors.New("access: directory reader is required")
	}
	return &Engine{dir: dir}, nil
}

// CanAccessEmployee decides whether the identity may act on the target
// employee record. ADMIN is allowed unconditionally; MANAGER only within
// their own department; EMPLOYEE only on their own record; an absent
// identity is always denied.
func (e *Engine) CanAccessEmployee(ctx context.Context, identity auth.Identity, targetEmployeeID int64) (bool, error) {
	switch identity.Role {
	case auth.RoleAdmin:
		return true, nil
	case auth.RoleManager:
		deptID, ok, err := e.ownDepartment(ctx, identity.Username)
		if err != nil {
			return false, err
		}
		if !ok {
			// A manager with no resolvable department has no scope.
			return false, nil
		}
		target, err := e.dir.Employee(ctx, targetEmployeeID)
		if errors.Is(err, directory.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return target.DepartmentID == deptID, nil
	case auth.RoleEmployee:
		own, err := e.dir.EmployeeByUsername(ctx, identity.Username)
		if errors.Is(err, directory.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return own.ID == targetEmployeeID, nil
	}
	return false, nil
}

// CanAccessDepartment mirrors the employee tiers, except EMPLOYEE is
// always denied: department resources are manager/admin scoped only.
func (e *Engine) CanAccessDepartment(ctx context.Context, identity auth.Identity, departmentID int64) (bool, error) {
	switch identity.Role {
	case auth.RoleAdmin:
		return true, nil
	case auth.RoleManager:
		deptID, ok, err := e.ownDepartment(ctx, identity.Username)
		if err != nil {
			return false, err
		}
		return ok && deptID == departmentID, nil
	}
	return false, nil
}

// OwnEmployeeID resolves the identity's own employee record id.
func (e *Engine) OwnEmployeeID(ctx context.Context, identity auth.Identity) (int64, bool, error) {
	own, err := e.dir.EmployeeByUsername(ctx, identity.Username)
	if errors.Is(err, directory.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return own.ID, true, nil
}

// OwnDepartmentID resolves the identity's own department id.
func (e *Engine) OwnDepartmentID(ctx context.Context, identity auth.Identity) (int64, bool, error) {
	return e.ownDepartment(ctx, identity.Username)
}

func (e *Engine) ownDepartment(ctx context.Context, username string) (int64, bool, error) {
	own, err := e.dir.EmployeeByUsername(ctx, username)
	if errors.Is(err, directory.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	if own.DepartmentID <= 0 {
		return 0, false, nil
	}
	return own.DepartmentID, true, nil
}
