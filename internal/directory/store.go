package directory

import "context"

// DepartmentStore manages departments.
type DepartmentStore interface {
	Create(ctx context.Context, d *Department) error
	Find(ctx context.Context, id int64) (*Department, error)
	FindByName(ctx context.Context, name string) (*Department, error)
	List(ctx context.Context) ([]*Department, error)
	Update(ctx context.Context, d *Department) error
	Delete(ctx context.Context, id int64) error
}

// EmployeeStore manages employee records and their department links.
type EmployeeStore interface {
	Create(ctx context.Context, e *Employee) error
	Find(ctx context.Context, id int64) (*Employee, error)
	FindByEmail(ctx context.Context, email string) (*Employee, error)
	FindByUserID(ctx context.Context, userID int64) (*Employee, error)
	// FindByUsername resolves an employee by their login username, the
	// local part of the employee email.
	FindByUsername(ctx context.Context, username string) (*Employee, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]*Employee, error)
	ListByDepartment(ctx context.Context, departmentID int64) ([]*Employee, error)
	ListByStatus(ctx context.Context, status EmployeeStatus) ([]*Employee, error)
	Update(ctx context.Context, e *Employee) error
}
