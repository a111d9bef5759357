package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"zenithcloud.org/internal/obs"
)

// Registration is the identity-service provisioning request issued when
// an employee is created.
type Registration struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Registrar provisions a login for a new employee. Any failure is fatal
// to employee creation: no employee row may exist without a principal.
type Registrar interface {
	RegisterEmployee(ctx context.Context, reg Registration) (userID int64, err error)
}

// DepartmentService owns department CRUD.
type DepartmentService struct {
	departments DepartmentStore
}

// NewDepartmentService constructs a DepartmentService.
func NewDepartmentService(departments DepartmentStore) (*DepartmentService, error) {
	if departments == nil {
		return nil, errors.New("directory: department store is required")
	}
	return &DepartmentService{departments: departments}, nil
}

// Create stores a new department with a unique name.
func (s *DepartmentService) Create(ctx context.Context, name, description string) (*Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: department name is required", ErrInvalidInput)
	}
	dept := &Department{Name: name, Description: strings.TrimSpace(description)}
	if err := s.departments.Create(ctx, dept); err != nil {
		return nil, err
	}
	return dept, nil
}

// Get returns a department by id.
func (s *DepartmentService) Get(ctx context.Context, id int64) (*Department, error) {
	return s.departments.Find(ctx, id)
}

// GetByName returns a department by its unique name.
func (s *DepartmentService) GetByName(ctx context.Context, name string) (*Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: department name is required", ErrInvalidInput)
	}
	return s.departments.FindByName(ctx, name)
}

// List returns all departments.
func (s *DepartmentService) List(ctx context.Context) ([]*Department, error) {
	return s.departments.List(ctx)
}

// Update replaces name and description.
func (s *DepartmentService) Update(ctx context.Context, id int64, name, description string) (*Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: department name is required", ErrInvalidInput)
	}
	dept, err := s.departments.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	dept.Name = name
	dept.Description = strings.TrimSpace(description)
	if err := s.departments.Update(ctx, dept); err != nil {
		return nil, err
	}
	return dept, nil
}

// Delete removes a department.
func (s *DepartmentService) Delete(ctx context.Context, id int64) error {
	return s.departments.Delete(ctx, id)
}

// Exists reports whether a department id resolves.
func (s *DepartmentService) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := s.departments.Find(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// EmployeeRequest carries the fields for creating or updating an employee.
type EmployeeRequest struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Position     string `json:"position"`
	Salary       int64  `json:"salary"`
	PhoneNumber  string `json:"phone_number"`
	DepartmentID int64  `json:"department_id"`
	Status       string `json:"status,omitempty"`
}

// EmployeeService owns employee CRUD and login provisioning.
type EmployeeService struct {
	employees   EmployeeStore
	departments *DepartmentService
	registrar   Registrar
}

// NewEmployeeService constructs an EmployeeService.
func NewEmployeeService(employees EmployeeStore, departments *DepartmentService, registrar Registrar) (*EmployeeService, error) {
	if employees == nil {
		return nil, errors.New("directory: employee store is required")
	}
	if departments == nil {
		return nil, errors.New("directory: department service is required")
	}
	if registrar == nil {
		return nil, errors.New("directory: registrar is required")
	}
	return &EmployeeService{employees: employees, departments: departments, registrar: registrar}, nil
}

// Create validates the request, provisions a login through the identity
// service, and stores the employee. A registration failure aborts the
// operation before any employee row is written.
func (s *EmployeeService) Create(ctx context.Context, req EmployeeRequest) (*Employee, error) {
	if err := validateEmployeeRequest(req); err != nil {
		return nil, err
	}
	exists, err := s.departments.Exists(ctx, req.DepartmentID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: department %d", ErrNotFound, req.DepartmentID)
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	taken, err := s.employees.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: employee with email %s already exists", ErrConflict, email)
	}

	userID, err := s.registrar.RegisterEmployee(ctx, Registration{
		Username:  usernameFromEmail(email),
		Email:     email,
		Password:  temporaryPassword(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return nil, fmt.Errorf("provision login for %s: %w", email, err)
	}

	emp := &Employee{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		Position:     strings.TrimSpace(req.Position),
		Salary:       req.Salary,
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
		Status:       StatusActive,
		UserID:       userID,
		DepartmentID: req.DepartmentID,
	}
	if err := s.employees.Create(ctx, emp); err != nil {
		return nil, err
	}
	obs.LogEntry(map[string]any{
		"level":       "info",
		"msg":         "employee created",
		"employee_id": emp.ID,
		"user_id":     userID,
	})
	return emp, nil
}

// Get returns an employee by id.
func (s *EmployeeService) Get(ctx context.Context, id int64) (*Employee, error) {
	return s.employees.Find(ctx, id)
}

// GetByUserID returns the employee linked to an identity-service user.
func (s *EmployeeService) GetByUserID(ctx context.Context, userID int64) (*Employee, error) {
	return s.employees.FindByUserID(ctx, userID)
}

// List returns all employees.
func (s *EmployeeService) List(ctx context.Context) ([]*Employee, error) {
	return s.employees.List(ctx)
}

// ListByDepartment returns a department's employees.
func (s *EmployeeService) ListByDepartment(ctx context.Context, departmentID int64) ([]*Employee, error) {
	return s.employees.ListByDepartment(ctx, departmentID)
}

// ListByStatus returns employees filtered by status.
func (s *EmployeeService) ListByStatus(ctx context.Context, status string) ([]*Employee, error) {
	parsed, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}
	return s.employees.ListByStatus(ctx, parsed)
}

// Update applies the request to an existing employee, including
// department moves and status changes.
func (s *EmployeeService) Update(ctx context.Context, id int64, req EmployeeRequest) (*Employee, error) {
	if err := validateEmployeeRequest(req); err != nil {
		return nil, err
	}
	emp, err := s.employees.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	emp.FirstName = strings.TrimSpace(req.FirstName)
	emp.LastName = strings.TrimSpace(req.LastName)
	emp.Email = strings.ToLower(strings.TrimSpace(req.Email))
	emp.Position = strings.TrimSpace(req.Position)
	emp.Salary = req.Salary
	emp.PhoneNumber = strings.TrimSpace(req.PhoneNumber)

	if req.Status != "" {
		status, err := ParseStatus(req.Status)
		if err != nil {
			return nil, err
		}
		emp.Status = status
	}
	if emp.DepartmentID != req.DepartmentID {
		exists, err := s.departments.Exists(ctx, req.DepartmentID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("%w: department %d", ErrNotFound, req.DepartmentID)
		}
		emp.DepartmentID = req.DepartmentID
	}

	if err := s.employees.Update(ctx, emp); err != nil {
		return nil, err
	}
	return emp, nil
}

// Delete soft-deletes an employee by marking them INACTIVE.
func (s *EmployeeService) Delete(ctx context.Context, id int64) error {
	emp, err := s.employees.Find(ctx, id)
	if err != nil {
		return err
	}
	emp.Status = StatusInactive
	return s.employees.Update(ctx, emp)
}

func validateEmployeeRequest(req EmployeeRequest) error {
	if strings.TrimSpace(req.FirstName) == "" {
		return fmt.Errorf("%w: first name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.LastName) == "" {
		return fmt.Errorf("%w: last name is required", ErrInvalidInput)
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	if req.DepartmentID <= 0 {
		return fmt.Errorf("%w: department_id is required", ErrInvalidInput)
	}
	return nil
}

func usernameFromEmail(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

func temporaryPassword() string {
	return "Temp@" + uuid.NewString()[:8]
}
