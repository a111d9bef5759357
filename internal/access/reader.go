package access

import (
	"context"

	"zenithcloud.org/internal/directory"
)

// StoreDirectory adapts an employee store to the Directory view the
// engine consults.
type StoreDirectory struct {
	Employees directory.EmployeeStore
}

var _ Directory = StoreDirectory{}

func (d StoreDirectory) EmployeeByUsername(ctx context.Context, username string) (*directory.Employee, error) {
	return d.Employees.FindByUsername(ctx, username)
}

func (d StoreDirectory) Employee(ctx context.Context, id int64) (*directory.Employee, error) {
	return d.Employees.Find(ctx, id)
}
