// Package authclient is the employee service's HTTP client for the
// identity service's register-employee operation.
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"zenithcloud.org/internal/directory"
)

const defaultTimeout = 10 * time.Second

// RemoteError carries the upstream status and message of a failed
// identity-service call.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("authclient: identity service returned %d: %s", e.Status, e.Message)
}

// Client talks to the identity service.
type Client struct {
	baseURL string
	client  *http.Client
}

var _ directory.Registrar = (*Client)(nil)

// Option configures Client behavior.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// New constructs a Client for the identity service at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("authclient: base URL is required")
	}
	c := &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type registerEmployeeRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type registerEmployeeResponse struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// RegisterEmployee provisions a login for a new employee. Any non-2xx
// response is returned as *RemoteError and must be treated as fatal by
// the caller: no employee record without a principal.
func (c *Client) RegisterEmployee(ctx context.Context, reg directory.Registration) (int64, error) {
	body, err := json.Marshal(registerEmployeeRequest{
		Username:  reg.Username,
		Email:     reg.Email,
		Password:  reg.Password,
		FirstName: reg.FirstName,
		LastName:  reg.LastName,
	})
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/register/employee", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("authclient: register employee: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var remote errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&remote)
		if remote.Error == "" {
			remote.Error = http.StatusText(resp.StatusCode)
		}
		return 0, &RemoteError{Status: resp.StatusCode, Message: remote.Error}
	}

	var payload registerEmployeeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("authclient: decode response: %w", err)
	}
	if payload.UserID <= 0 {
		return 0, errors.New("authclient: user id missing in identity service response")
	}
	return payload.UserID, nil
}
