package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"zenithcloud.org/internal/directory"
)

// Departments implements directory.DepartmentStore.
type Departments struct {
	db *sql.DB
}

var _ directory.DepartmentStore = (*Departments)(nil)

func (s *Departments) Create(ctx context.Context, d *directory.Department) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	row := s.db.QueryRowContext(ctx, `
		insert into departments (name, description)
		values ($1, $2)
		returning id, created_at, updated_at
	`, d.Name, d.Description)
	if err := row.Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return fmt.Errorf("%w: department %q already exists", directory.ErrConflict, d.Name)
		}
		return err
	}
	return nil
}

func (s *Departments) Find(ctx context.Context, id int64) (*directory.Department, error) {
	return s.find(ctx, `
		select id, name, coalesce(description, ''), created_at, updated_at
		from departments
		where id = $1
	`, id)
}

func (s *Departments) FindByName(ctx context.Context, name string) (*directory.Department, error) {
	return s.find(ctx, `
		select id, name, coalesce(description, ''), created_at, updated_at
		from departments
		where name = $1
	`, name)
}

func (s *Departments) find(ctx context.Context, query string, arg any) (*directory.Department, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	var d directory.Department
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&d.ID, &d.Name, &d.Description, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, directory.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Departments) List(ctx context.Context) ([]*directory.Department, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	rows, err := s.db.QueryContext(ctx, `
		select id, name, coalesce(description, ''), created_at, updated_at
		from departments
		order by name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*directory.Department
	for rows.Next() {
		var d directory.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Departments) Update(ctx context.Context, d *directory.Department) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	res, err := s.db.ExecContext(ctx, `
		update departments
		set name = $1, description = $2, updated_at = now()
		where id = $3
	`, d.Name, d.Description, d.ID)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return fmt.Errorf("%w: department %q already exists", directory.ErrConflict, d.Name)
		}
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return directory.ErrNotFound
	}
	return nil
}

func (s *Departments) Delete(ctx context.Context, id int64) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	res, err := s.db.ExecContext(ctx, `delete from departments where id = $1`, id)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			return fmt.Errorf("%w: department %d still has employees", directory.ErrConflict, id)
		}
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return directory.ErrNotFound
	}
	return nil
}

// Employees implements directory.EmployeeStore.
type Employees struct {
	db *sql.DB
}

var _ directory.EmployeeStore = (*Employees)(nil)

const employeeColumns = `id, first_name, last_name, email, coalesce(position, ''), salary, coalesce(phone_number, ''), status, user_id, department_id, created_at, updated_at`

func (s *Employees) Create(ctx context.Context, e *directory.Employee) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	row := s.db.QueryRowContext(ctx, `
		insert into employees (first_name, last_name, email, position, salary, phone_number, status, user_id, department_id)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		returning id, created_at, updated_at
	`, e.FirstName, e.LastName, e.Email, e.Position, e.Salary, e.PhoneNumber, string(e.Status), e.UserID, e.DepartmentID)
	if err := row.Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok {
			switch pgErr.Code {
			case pgErrUniqueViolation:
				return fmt.Errorf("%w: employee with email %s already exists", directory.ErrConflict, e.Email)
			case pgErrForeignKeyViolation:
				return fmt.Errorf("%w: department %d", directory.ErrNotFound, e.DepartmentID)
			}
		}
		return err
	}
	return nil
}

func (s *Employees) Find(ctx context.Context, id int64) (*directory.Employee, error) {
	return s.find(ctx, `select `+employeeColumns+` from employees where id = $1`, id)
}

func (s *Employees) FindByEmail(ctx context.Context, email string) (*directory.Employee, error) {
	return s.find(ctx, `select `+employeeColumns+` from employees where email = $1`, email)
}

func (s *Employees) FindByUserID(ctx context.Context, userID int64) (*directory.Employee, error) {
	return s.find(ctx, `select `+employeeColumns+` from employees where user_id = $1`, userID)
}

// FindByUsername matches the login username against the local part of
// the employee email, which is how usernames are derived at
// provisioning time.
func (s *Employees) FindByUsername(ctx context.Context, username string) (*directory.Employee, error) {
	return s.find(ctx, `select `+employeeColumns+` from employees where split_part(email, '@', 1) = $1`, username)
}

func (s *Employees) find(ctx context.Context, query string, arg any) (*directory.Employee, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	var (
		e      directory.Employee
		status string
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&e.ID, &e.FirstName, &e.LastName, &e.Email, &e.Position, &e.Salary,
		&e.PhoneNumber, &status, &e.UserID, &e.DepartmentID, &e.CreatedAt, &e.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, directory.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	e.Status = directory.EmployeeStatus(status)
	return &e, nil
}

func (s *Employees) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if s.db == nil {
		return false, errors.New("database connection unavailable")
	}
	var exists bool
	err := s.db.QueryRowContext(ctx, `select exists(select 1 from employees where email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (s *Employees) List(ctx context.Context) ([]*directory.Employee, error) {
	return s.list(ctx, `select `+employeeColumns+` from employees order by last_name, first_name`)
}

func (s *Employees) ListByDepartment(ctx context.Context, departmentID int64) ([]*directory.Employee, error) {
	return s.list(ctx, `select `+employeeColumns+` from employees where department_id = $1 order by last_name, first_name`, departmentID)
}

func (s *Employees) ListByStatus(ctx context.Context, status directory.EmployeeStatus) ([]*directory.Employee, error) {
	return s.list(ctx, `select `+employeeColumns+` from employees where status = $1 order by last_name, first_name`, string(status))
}

func (s *Employees) list(ctx context.Context, query string, args ...any) ([]*directory.Employee, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*directory.Employee
	for rows.Next() {
		var (
			e      directory.Employee
			status string
		)
		if err := rows.Scan(
			&e.ID, &e.FirstName, &e.LastName, &e.Email, &e.Position, &e.Salary,
			&e.PhoneNumber, &status, &e.UserID, &e.DepartmentID, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		e.Status = directory.EmployeeStatus(status)
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Employees) Update(ctx context.Context, e *directory.Employee) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	res, err := s.db.ExecContext(ctx, `
		update employees
		set first_name = $1, last_name = $2, email = $3, position = $4,
		    salary = $5, phone_number = $6, status = $7, department_id = $8,
		    updated_at = now()
		where id = $9
	`, e.FirstName, e.LastName, e.Email, e.Position, e.Salary, e.PhoneNumber, string(e.Status), e.DepartmentID, e.ID)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok {
			switch pgErr.Code {
			case pgErrUniqueViolation:
				return fmt.Errorf("%w: employee with email %s already exists", directory.ErrConflict, e.Email)
			case pgErrForeignKeyViolation:
				return fmt.Errorf("%w: department %d", directory.ErrNotFound, e.DepartmentID)
			}
		}
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return directory.ErrNotFound
	}
	return nil
}
