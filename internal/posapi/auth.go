package posapi

import (
	"context"
	"net/http"
)

// FieldAuthenticated is the session introspection field telling whether the token is still valid
const FieldAuthenticated = "authenticated"

// SessionInfo represents the response of the session introspection endpoint.
// Besides 'authenticated' it carries the identity fields of the user (username, id, ...).
type SessionInfo map[string]any

// Authenticated returns whether the backend considers the session authenticated
func (info SessionInfo) Authenticated() bool {
	authenticated, _ := info[FieldAuthenticated].(bool)
	return authenticated
}

// LoginResult represents the response of the login endpoint
type LoginResult struct {
	Access  string         `json:"access"`
	Refresh string         `json:"refresh"`
	User    map[string]any `json:"user"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest represents the payload of the registration endpoint
type RegisterRequest struct {
	Username  string `json:"username" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
}

// Session calls 'GET /auth/session/'
func (client *Client) Session(ctx context.Context) (SessionInfo, error) {
	info := SessionInfo{}
	if err := client.do(ctx, http.MethodGet, "/auth/session/", nil, &info); err != nil {
		return nil, err
	}
	return info, nil
}

// Login calls 'POST /auth/login/'
func (client *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	result := new(LoginResult)
	err := client.do(ctx, http.MethodPost, "/auth/login/", &loginRequest{
		Username: username,
		Password: password,
	}, result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Logout calls 'POST /auth/logout/'; the response body is ignored
func (client *Client) Logout(ctx context.Context) error {
	return client.do(ctx, http.MethodPost, "/auth/logout/", nil, nil)
}

// Register calls 'POST /register/'
func (client *Client) Register(ctx context.Context, request *RegisterRequest) error {
	if err := validateInput(request); err != nil {
		return err
	}
	return client.do(ctx, http.MethodPost, "/register/", request, nil)
}
