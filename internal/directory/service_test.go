package directory

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type memoryDepartmentStore struct {
	departments map[int64]*Department
	nextID      int64
}

func newMemoryDepartmentStore() *memoryDepartmentStore {
	return &memoryDepartmentStore{departments: map[int64]*Department{}, nextID: 1}
}

func (m *memoryDepartmentStore) Create(_ context.Context, d *Department) error {
	for _, existing := range m.departments {
		if existing.Name == d.Name {
			return ErrConflict
		}
	}
	d.ID = m.nextID
	m.nextID++
	m.departments[d.ID] = d
	return nil
}

func (m *memoryDepartmentStore) Find(_ context.Context, id int64) (*Department, error) {
	if d, ok := m.departments[id]; ok {
		copied := *d
		return &copied, nil
	}
	return nil, ErrNotFound
}

func (m *memoryDepartmentStore) FindByName(_ context.Context, name string) (*Department, error) {
	for _, d := range m.departments {
		if d.Name == name {
			copied := *d
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryDepartmentStore) List(_ context.Context) ([]*Department, error) {
	var result []*Department
	for _, d := range m.departments {
		copied := *d
		result = append(result, &copied)
	}
	return result, nil
}

func (m *memoryDepartmentStore) Update(_ context.Context, d *Department) error {
	if _, ok := m.departments[d.ID]; !ok {
		return ErrNotFound
	}
	copied := *d
	m.departments[d.ID] = &copied
	return nil
}

func (m *memoryDepartmentStore) Delete(_ context.Context, id int64) error {
	if _, ok := m.departments[id]; !ok {
		return ErrNotFound
	}
	delete(m.departments, id)
	return nil
}

type memoryEmployeeStore struct {
	employees map[int64]*Employee
	nextID    int64
}

func newMemoryEmployeeStore() *memoryEmployeeStore {
	return &memoryEmployeeStore{employees: map[int64]*Employee{}, nextID: 1}
}

func (m *memoryEmployeeStore) Create(_ context.Context, e *Employee) error {
	for _, existing := range m.employees {
		if existing.Email == e.Email {
			return ErrConflict
		}
	}
	e.ID = m.nextID
	m.nextID++
	copied := *e
	m.employees[e.ID] = &copied
	return nil
}

func (m *memoryEmployeeStore) Find(_ context.Context, id int64) (*Employee, error) {
	if e, ok := m.employees[id]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, ErrNotFound
}

func (m *memoryEmployeeStore) FindByEmail(_ context.Context, email string) (*Employee, error) {
	for _, e := range m.employees {
		if e.Email == email {
			copied := *e
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryEmployeeStore) FindByUserID(_ context.Context, userID int64) (*Employee, error) {
	for _, e := range m.employees {
		if e.UserID == userID {
			copied := *e
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryEmployeeStore) FindByUsername(_ context.Context, username string) (*Employee, error) {
	for _, e := range m.employees {
		if local, _, ok := strings.Cut(e.Email, "@"); ok && local == username {
			copied := *e
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryEmployeeStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, e := range m.employees {
		if e.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryEmployeeStore) List(_ context.Context) ([]*Employee, error) {
	var result []*Employee
	for _, e := range m.employees {
		copied := *e
		result = append(result, &copied)
	}
	return result, nil
}

func (m *memoryEmployeeStore) ListByDepartment(_ context.Context, departmentID int64) ([]*Employee, error) {
	var result []*Employee
	for _, e := range m.employees {
		if e.DepartmentID == departmentID {
			copied := *e
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *memoryEmployeeStore) ListByStatus(_ context.Context, status EmployeeStatus) ([]*Employee, error) {
	var result []*Employee
	for _, e := range m.employees {
		if e.Status == status {
			copied := *e
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *memoryEmployeeStore) Update(_ context.Context, e *Employee) error {
	if _, ok := m.employees[e.ID]; !ok {
		return ErrNotFound
	}
	copied := *e
	m.employees[e.ID] = &copied
	return nil
}

// recordingRegistrar captures provisioning requests and can be told to fail.
type recordingRegistrar struct {
	calls      []Registration
	err        error
	nextUserID int64
}

func (r *recordingRegistrar) RegisterEmployee(_ context.Context, reg Registration) (int64, error) {
	r.calls = append(r.calls, reg)
	if r.err != nil {
		return 0, r.err
	}
	r.nextUserID++
	return r.nextUserID, nil
}

func newTestServices(t *testing.T) (*EmployeeService, *DepartmentService, *memoryEmployeeStore, *recordingRegistrar) {
	t.Helper()
	departments, err := NewDepartmentService(newMemoryDepartmentStore())
	if err != nil {
		t.Fatalf("NewDepartmentService: %v", err)
	}
	employeeStore := newMemoryEmployeeStore()
	registrar := &recordingRegistrar{}
	employees, err := NewEmployeeService(employeeStore, departments, registrar)
	if err != nil {
		t.Fatalf("NewEmployeeService: %v", err)
	}
	return employees, departments, employeeStore, registrar
}

func seedDepartment(t *testing.T, departments *DepartmentService, name string) *Department {
	t.Helper()
	dept, err := departments.Create(context.Background(), name, "")
	if err != nil {
		t.Fatalf("seed department %s: %v", name, err)
	}
	return dept
}

func validRequest(departmentID int64) EmployeeRequest {
	return EmployeeRequest{
		FirstName:    "Jane",
		LastName:     "Doe",
		Email:        "Jane.Doe@zenithcloud.com",
		Position:     "Engineer",
		Salary:       90000,
		DepartmentID: departmentID,
	}
}

func TestCreateEmployeeProvisionsLogin(t *testing.T) {
	employees, departments, _, registrar := newTestServices(t)
	dept := seedDepartment(t, departments, "Engineering")

	emp, err := employees.Create(context.Background(), validRequest(dept.ID))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if emp.Status != StatusActive {
		t.Fatalf("new employees must be ACTIVE, got %s", emp.Status)
	}
	if emp.Email != "jane.doe@zenithcloud.com" {
		t.Fatalf("email not normalized: %s", emp.Email)
	}
	if emp.UserID == 0 {
		t.Fatal("expected linked user id")
	}

	if len(registrar.calls) != 1 {
		t.Fatalf("expected one provisioning call, got %d", len(registrar.calls))
	}
	reg := registrar.calls[0]
	if reg.Username != "jane.doe" {
		t.Fatalf("username must be the email local part, got %q", reg.Username)
	}
	if !strings.HasPrefix(reg.Password, "Temp@") || len(reg.Password) != len("Temp@")+8 {
		t.Fatalf("unexpected temporary password shape: %q", reg.Password)
	}
}

func TestCreateEmployeeRegistrationFailureIsFatal(t *testing.T) {
	employees, departments, store, registrar := newTestServices(t)
	dept := seedDepartment(t, departments, "Engineering")
	registrar.err = errors.New("auth service unavailable")

	_, err := employees.Create(context.Background(), validRequest(dept.ID))
	if err == nil {
		t.Fatal("expected provisioning failure to abort creation")
	}
	if len(store.employees) != 0 {
		t.Fatalf("no employee row may exist without a login, found %d", len(store.employees))
	}
}

func TestCreateEmployeeValidation(t *testing.T) {
	employees, departments, _, _ := newTestServices(t)
	dept := seedDepartment(t, departments, "Engineering")
	ctx := context.Background()

	cases := []struct {
		name    string
		mutate  func(*EmployeeRequest)
		wantErr error
	}{
		{name: "missing first name", mutate: func(r *EmployeeRequest) { r.FirstName = " " }, wantErr: ErrInvalidInput},
		{name: "missing last name", mutate: func(r *EmployeeRequest) { r.LastName = "" }, wantErr: ErrInvalidInput},
		{name: "invalid email", mutate: func(r *EmployeeRequest) { r.Email = "not-an-email" }, wantErr: ErrInvalidInput},
		{name: "missing department", mutate: func(r *EmployeeRequest) { r.DepartmentID = 0 }, wantErr: ErrInvalidInput},
		{name: "unknown department", mutate: func(r *EmployeeRequest) { r.DepartmentID = 999 }, wantErr: ErrNotFound},
	}
	for _, tc := range cases {
		req := validRequest(dept.ID)
		tc.mutate(&req)
		if _, err := employees.Create(ctx, req); !errors.Is(err, tc.wantErr) {
			t.Fatalf("%s: got %v, want %v", tc.name, err, tc.wantErr)
		}
	}
}

func TestCreateEmployeeDuplicateEmail(t *testing.T) {
	employees, departments, _, _ := newTestServices(t)
	dept := seedDepartment(t, departments, "Engineering")
	ctx := context.Background()

	if _, err := employees.Create(ctx, validRequest(dept.ID)); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := employees.Create(ctx, validRequest(dept.ID)); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestUpdateEmployeeDepartmentMove(t *testing.T) {
	employees, departments, _, _ := newTestServices(t)
	eng := seedDepartment(t, departments, "Engineering")
	hr := seedDepartment(t, departments, "Human Resources")
	ctx := context.Background()

	emp, err := employees.Create(ctx, validRequest(eng.ID))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	req := validRequest(hr.ID)
	req.Status = "on_leave"
	updated, err := employees.Update(ctx, emp.ID, req)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.DepartmentID != hr.ID {
		t.Fatalf("department not moved: %d", updated.DepartmentID)
	}
	if updated.Status != StatusOnLeave {
		t.Fatalf("status not applied: %s", updated.Status)
	}

	req.DepartmentID = 999
	if _, err := employees.Update(ctx, emp.ID, req); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected unknown department to fail, got %v", err)
	}
}

func TestDeleteEmployeeIsSoft(t *testing.T) {
	employees, departments, _, _ := newTestServices(t)
	dept := seedDepartment(t, departments, "Engineering")
	ctx := context.Background()

	emp, err := employees.Create(ctx, validRequest(dept.ID))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := employees.Delete(ctx, emp.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	got, err := employees.Get(ctx, emp.ID)
	if err != nil {
		t.Fatalf("record must survive deletion: %v", err)
	}
	if got.Status != StatusInactive {
		t.Fatalf("expected INACTIVE after delete, got %s", got.Status)
	}
}

func TestListByStatusRejectsUnknownStatus(t *testing.T) {
	employees, _, _, _ := newTestServices(t)
	if _, err := employees.ListByStatus(context.Background(), "RETIRED"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDepartmentLifecycle(t *testing.T) {
	_, departments, _, _ := newTestServices(t)
	ctx := context.Background()

	dept, err := departments.Create(ctx, " Engineering ", "Product engineering")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if dept.Name != "Engineering" {
		t.Fatalf("name not trimmed: %q", dept.Name)
	}

	if _, err := departments.Create(ctx, "Engineering", ""); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected duplicate name conflict, got %v", err)
	}

	byName, err := departments.GetByName(ctx, "Engineering")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if byName.ID != dept.ID {
		t.Fatalf("GetByName resolved wrong department: %d", byName.ID)
	}

	exists, err := departments.Exists(ctx, dept.ID)
	if err != nil || !exists {
		t.Fatalf("Exists: exists=%v err=%v", exists, err)
	}
	exists, err = departments.Exists(ctx, 999)
	if err != nil || exists {
		t.Fatalf("Exists(999): exists=%v err=%v", exists, err)
	}

	updated, err := departments.Update(ctx, dept.ID, "Platform", "")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Platform" {
		t.Fatalf("Update did not apply name: %q", updated.Name)
	}

	if err := departments.Delete(ctx, dept.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := departments.Get(ctx, dept.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
