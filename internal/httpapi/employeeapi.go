package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"zenithcloud.org/internal/access"
	"zenithcloud.org/internal/audit"
	"zenithcloud.org/internal/auth"
	"zenithcloud.org/internal/directory"
	"zenithcloud.org/internal/obs"
)

// EmployeeAPI is the employee service's HTTP layer. Every guarded
// operation asks the access engine for an explicit allow/deny before
// touching the directory.
type EmployeeAPI struct {
	mux         *http.ServeMux
	employees   *directory.EmployeeService
	departments *directory.DepartmentService
	engine      *access.Engine
	tokens      *auth.TokenService
	readyProbe  ReadyProbe
	version     string

	rateBurst  int
	ratePerSec int
}

// NewEmployeeAPI wires the employee service routes.
func NewEmployeeAPI(
	employees *directory.EmployeeService,
	departments *directory.DepartmentService,
	engine *access.Engine,
	tokens *auth.TokenService,
	rp ReadyProbe,
	version string,
) *EmployeeAPI {
	a := &EmployeeAPI{
		mux:         http.NewServeMux(),
		employees:   employees,
		departments: departments,
		engine:      engine,
		tokens:      tokens,
		readyProbe:  rp,
		version:     version,
		rateBurst:   20,
		ratePerSec:  10,
	}

	a.mux.HandleFunc("/api/employees", a.handleEmployees)
	a.mux.HandleFunc("/api/employees/", a.handleEmployeeScoped)
	a.mux.HandleFunc("/api/departments", a.handleDepartments)
	a.mux.HandleFunc("/api/departments/", a.handleDepartmentScoped)

	a.mux.HandleFunc("/healthz", a.healthz)
	a.mux.HandleFunc("/readyz", a.ready)
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped handler chain.
func (a *EmployeeAPI) Handler() http.Handler {
	var h http.Handler = a.mux
	h = WithAuth(a.tokens, h)
	h = MaxBodyBytes(h, 1<<20)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

// ensureAccessEmployee runs the engine and writes the response for the
// deny and error outcomes. Denial and lookup failure stay distinct.
func (a *EmployeeAPI) ensureAccessEmployee(w http.ResponseWriter, r *http.Request, identity auth.Identity, targetID int64) bool {
	allowed, err := a.engine.CanAccessEmployee(r.Context(), identity, targetID)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "access decision unavailable")
		return false
	}
	if !allowed {
		writeError(w, r, http.StatusForbidden, "access denied")
		return false
	}
	return true
}

func (a *EmployeeAPI) ensureAccessDepartment(w http.ResponseWriter, r *http.Request, identity auth.Identity, departmentID int64) bool {
	allowed, err := a.engine.CanAccessDepartment(r.Context(), identity, departmentID)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "access decision unavailable")
		return false
	}
	if !allowed {
		writeError(w, r, http.StatusForbidden, "access denied")
		return false
	}
	return true
}

// --- employees ---

func (a *EmployeeAPI) handleEmployees(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.createEmployee(w, r)
	case http.MethodGet:
		a.listEmployees(w, r)
	default:
		methodNotAllowed(w, r, http.MethodPost, http.MethodGet)
	}
}

func (a *EmployeeAPI) createEmployee(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if identity.Role != auth.RoleAdmin {
		writeError(w, r, http.StatusForbidden, "access denied")
		return
	}
	var req directory.EmployeeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	emp, err := a.employees.Create(r.Context(), req)
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "directory.employee.created", map[string]any{
		"employee_id":   emp.ID,
		"department_id": emp.DepartmentID,
	})
	writeJSON(w, http.StatusCreated, emp)
}

// listEmployees scopes the result by tier: admins see everyone, managers
// their department, employees themselves.
func (a *EmployeeAPI) listEmployees(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	switch identity.Role {
	case auth.RoleAdmin:
		list, err := a.employees.List(r.Context())
		if err != nil {
			handleDirectoryError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	case auth.RoleManager:
		deptID, ok, err := a.engine.OwnDepartmentID(r.Context(), identity)
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, "access decision unavailable")
			return
		}
		if !ok {
			writeJSON(w, http.StatusOK, []*directory.Employee{})
			return
		}
		list, err := a.employees.ListByDepartment(r.Context(), deptID)
		if err != nil {
			handleDirectoryError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	default:
		ownID, ok, err := a.engine.OwnEmployeeID(r.Context(), identity)
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, "access decision unavailable")
			return
		}
		if !ok {
			writeJSON(w, http.StatusOK, []*directory.Employee{})
			return
		}
		emp, err := a.employees.Get(r.Context(), ownID)
		if err != nil {
			handleDirectoryError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, []*directory.Employee{emp})
	}
}

func (a *EmployeeAPI) handleEmployeeScoped(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/employees/"), "/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(path, "/")
	switch {
	case len(parts) == 1:
		id, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		a.handleEmployeeByID(w, r, id)
	case len(parts) == 2 && parts[0] == "user":
		userID, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		a.getEmployeeByUserID(w, r, userID)
	case len(parts) == 2 && parts[0] == "department":
		deptID, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		a.getEmployeesByDepartment(w, r, deptID)
	case len(parts) == 2 && parts[0] == "status":
		a.getEmployeesByStatus(w, r, parts[1])
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *EmployeeAPI) handleEmployeeByID(w http.ResponseWriter, r *http.Request, id int64) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		if !a.ensureAccessEmployee(w, r, identity, id) {
			return
		}
		emp, err := a.employees.Get(r.Context(), id)
		if err != nil {
			handleDirectoryError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, emp)
	case http.MethodPut:
		if identity.Role != auth.RoleAdmin && identity.Role != auth.RoleManager {
			writeError(w, r, http.StatusForbidden, "access denied")
			return
		}
		if identity.Role == auth.RoleManager && !a.ensureAccessEmployee(w, r, identity, id) {
			return
		}
		var req directory.EmployeeRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		emp, err := a.employees.Update(r.Context(), id, req)
		if err != nil {
			handleDirectoryError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "directory.employee.updated", map[string]any{
			"employee_id": emp.ID,
		})
		writeJSON(w, http.StatusOK, emp)
	case http.MethodDelete:
		if identity.Role != auth.RoleAdmin {
			writeError(w, r, http.StatusForbidden, "access denied")
			return
		}
		if err := a.employees.Delete(r.Context(), id); err != nil {
			handleDirectoryError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "directory.employee.deleted", map[string]any{
			"employee_id": id,
		})
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (a *EmployeeAPI) getEmployeeByUserID(w http.ResponseWriter, r *http.Request, userID int64) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if identity.Role == auth.RoleAdmin || identity.Role == auth.RoleManager {
		emp, err := a.employees.GetByUserID(r.Context(), userID)
		if err != nil {
			handleDirectoryError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, emp)
		return
	}
	// Employees may only resolve themselves, whatever user id they ask for.
	ownID, ok2, err := a.engine.OwnEmployeeID(r.Context(), identity)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "access decision unavailable")
		return
	}
	if !ok2 {
		writeError(w, r, http.StatusForbidden, "access denied")
		return
	}
	emp, err := a.employees.Get(r.Context(), ownID)
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, emp)
}

func (a *EmployeeAPI) getEmployeesByDepartment(w http.ResponseWriter, r *http.Request, deptID int64) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if !a.ensureAccessDepartment(w, r, identity, deptID) {
		return
	}
	list, err := a.employees.ListByDepartment(r.Context(), deptID)
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *EmployeeAPI) getEmployeesByStatus(w http.ResponseWriter, r *http.Request, status string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	switch identity.Role {
	case auth.RoleAdmin:
		list, err := a.employees.ListByStatus(r.Context(), status)
		if err != nil {
			handleDirectoryError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	case auth.RoleManager:
		deptID, ok2, err := a.engine.OwnDepartmentID(r.Context(), identity)
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, "access decision unavailable")
			return
		}
		if !ok2 {
			writeJSON(w, http.StatusOK, []*directory.Employee{})
			return
		}
		list, err := a.employees.ListByStatus(r.Context(), status)
		if err != nil {
			handleDirectoryError(w, r, err)
			return
		}
		scoped := make([]*directory.Employee, 0, len(list))
		for _, emp := range list {
			if emp.DepartmentID == deptID {
				scoped = append(scoped, emp)
			}
		}
		writeJSON(w, http.StatusOK, scoped)
	default:
		writeError(w, r, http.StatusForbidden, "access denied")
	}
}

// --- departments ---

func (a *EmployeeAPI) handleDepartments(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodPost:
		if identity.Role != auth.RoleAdmin {
			writeError(w, r, http.StatusForbidden, "access denied")
			return
		}
		var req struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		dept, err := a.departments.Create(r.Context(), req.Name, req.Description)
		if err != nil {
			handleDirectoryError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "directory.department.created", map[string]any{
			"department_id": dept.ID,
			"name":          dept.Name,
		})
		writeJSON(w, http.StatusCreated, dept)
	case http.MethodGet:
		a.listDepartments(w, r, identity)
	default:
		methodNotAllowed(w, r, http.MethodPost, http.MethodGet)
	}
}

func (a *EmployeeAPI) listDepartments(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	switch identity.Role {
	case auth.RoleAdmin:
		list, err := a.departments.List(r.Context())
		if err != nil {
			handleDirectoryError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	case auth.RoleManager:
		deptID, ok, err := a.engine.OwnDepartmentID(r.Context(), identity)
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, "access decision unavailable")
			return
		}
		if !ok {
			writeJSON(w, http.StatusOK, []*directory.Department{})
			return
		}
		dept, err := a.departments.Get(r.Context(), deptID)
		if err != nil {
			handleDirectoryError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, []*directory.Department{dept})
	default:
		writeError(w, r, http.StatusForbidden, "access denied")
	}
}

func (a *EmployeeAPI) handleDepartmentScoped(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/departments/"), "/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(path, "/")
	switch {
	case len(parts) == 1:
		id, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		a.handleDepartmentByID(w, r, id)
	case len(parts) == 2 && parts[0] == "name":
		a.getDepartmentByName(w, r, parts[1])
	case len(parts) == 2 && parts[1] == "exists":
		id, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		a.departmentExists(w, r, id)
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *EmployeeAPI) handleDepartmentByID(w http.ResponseWriter, r *http.Request, id int64) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		if !a.ensureAccessDepartment(w, r, identity, id) {
			return
		}
		dept, err := a.departments.Get(r.Context(), id)
		if err != nil {
			handleDirectoryError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, dept)
	case http.MethodPut:
		if identity.Role != auth.RoleAdmin {
			writeError(w, r, http.StatusForbidden, "access denied")
			return
		}
		var req struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		dept, err := a.departments.Update(r.Context(), id, req.Name, req.Description)
		if err != nil {
			handleDirectoryError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "directory.department.updated", map[string]any{
			"department_id": dept.ID,
		})
		writeJSON(w, http.StatusOK, dept)
	case http.MethodDelete:
		if identity.Role != auth.RoleAdmin {
			writeError(w, r, http.StatusForbidden, "access denied")
			return
		}
		if err := a.departments.Delete(r.Context(), id); err != nil {
			handleDirectoryError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "directory.department.deleted", map[string]any{
			"department_id": id,
		})
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (a *EmployeeAPI) getDepartmentByName(w http.ResponseWriter, r *http.Request, name string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	dept, err := a.departments.GetByName(r.Context(), name)
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	if !a.ensureAccessDepartment(w, r, identity, dept.ID) {
		return
	}
	writeJSON(w, http.StatusOK, dept)
}

func (a *EmployeeAPI) departmentExists(w http.ResponseWriter, r *http.Request, id int64) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := requireIdentity(w, r); !ok {
		return
	}
	exists, err := a.departments.Exists(r.Context(), id)
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

func (a *EmployeeAPI) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "employee-service",
		"version": a.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *EmployeeAPI) ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}
