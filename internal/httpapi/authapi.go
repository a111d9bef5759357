package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"zenithcloud.org/internal/audit"
	"zenithcloud.org/internal/auth"
	"zenithcloud.org/internal/obs"
)

// ReadyProbe reports readiness, pinging the database when one is wired.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

const derivedEmailDomain = "@zenithcloud.com"

// AuthAPI is the identity service's HTTP layer.
type AuthAPI struct {
	mux        *http.ServeMux
	svc        *auth.Service
	readyProbe ReadyProbe
	version    string

	rateBurst  int
	ratePerSec int
}

// NewAuthAPI wires the identity service routes.
func NewAuthAPI(svc *auth.Service, rp ReadyProbe, version string) *AuthAPI {
	a := &AuthAPI{
		mux:        http.NewServeMux(),
		svc:        svc,
		readyProbe: rp,
		version:    version,
		rateBurst:  20,
		ratePerSec: 10,
	}

	a.mux.HandleFunc("/auth/register", a.handleRegister)
	a.mux.HandleFunc("/auth/register/employee", a.handleRegisterEmployee)
	a.mux.HandleFunc("/auth/login", a.handleLogin)
	a.mux.HandleFunc("/auth/validate", a.handleValidate)
	a.mux.HandleFunc("/auth/check-username/", a.handleCheckUsername)

	a.mux.HandleFunc("/healthz", a.healthz)
	a.mux.HandleFunc("/readyz", a.ready)
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped handler chain.
func (a *AuthAPI) Handler() http.Handler {
	var h http.Handler = a.mux
	h = WithAuth(a.svc.Tokens(), h)
	h = MaxBodyBytes(h, 1<<20)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Message  string `json:"message"`
}

func (a *AuthAPI) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	// Self-service registration derives the email and grants the fixed
	// default role.
	email := strings.TrimSpace(req.Username) + derivedEmailDomain
	user, err := a.svc.Register(r.Context(), req.Username, email, req.Password, auth.RoleEmployee.String())
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	token, _, err := a.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.user.registered", map[string]any{
		"username": user.Username,
		"role":     user.Role.String(),
	})
	writeJSON(w, http.StatusOK, authResponse{
		Token:    token,
		Username: user.Username,
		Role:     user.Role.String(),
		Message:  "User registered successfully",
	})
}

type registerEmployeeRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role,omitempty"`
}

func (a *AuthAPI) handleRegisterEmployee(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req registerEmployeeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		writeError(w, r, http.StatusBadRequest, "first_name and last_name are required")
		return
	}
	role := req.Role
	if strings.TrimSpace(role) == "" {
		role = auth.RoleEmployee.String()
	}

	user, err := a.svc.Register(r.Context(), req.Username, req.Email, req.Password, role)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.employee.registered", map[string]any{
		"username": user.Username,
		"role":     user.Role.String(),
	})
	writeJSON(w, http.StatusCreated, map[string]any{
		"userId":   user.ID,
		"username": user.Username,
		"role":     user.Role.String(),
	})
}

func (a *AuthAPI) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	token, user, err := a.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.user.login", map[string]any{
		"username": user.Username,
	})
	writeJSON(w, http.StatusOK, authResponse{
		Token:    token,
		Username: user.Username,
		Role:     user.Role.String(),
		Message:  "Login successful",
	})
}

func (a *AuthAPI) handleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, err := extractBearerToken(r.Header.Get(authHeader)); err != nil {
		writeError(w, r, http.StatusUnauthorized, err.Error())
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Token is valid",
		"username": identity.Username,
		"role":     identity.Role.String(),
	})
}

func (a *AuthAPI) handleCheckUsername(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	username := strings.Trim(strings.TrimPrefix(r.URL.Path, "/auth/check-username/"), "/")
	if username == "" {
		writeError(w, r, http.StatusBadRequest, "username cannot be empty")
		return
	}

	exists, err := a.svc.UsernameExists(r.Context(), username)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	message := "Username available"
	if exists {
		message = "Username already taken"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"username":  username,
		"available": !exists,
		"message":   message,
	})
}

func (a *AuthAPI) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "auth-service",
		"version": a.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *AuthAPI) ready(w http.ResponseWriter, r *http.Request) {
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
