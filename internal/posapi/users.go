package posapi

import (
	"context"
	"net/http"
	"net/url"
)

// Role represents the role assigned to a user
type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// User represents a user account as managed by administrators
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Role      *Role  `json:"role,omitempty"`
}

// RoleName returns the name of the user's role or an empty string if none is assigned
func (user *User) RoleName() string {
	if user.Role == nil {
		return ""
	}
	return user.Role.Name
}

// CreateUserInput is used to create a new user
type CreateUserInput struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role,omitempty"`
}

// UpdateUserInput is used to update an existing user
type UpdateUserInput struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	RoleID   *int64 `json:"role_id,omitempty"`
}

// Users calls 'GET /usuarios/'
func (client *Client) Users(ctx context.Context) ([]*User, error) {
	var users []*User
	if err := client.do(ctx, http.MethodGet, "/usuarios/", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// User calls 'GET /usuarios/{id}/'
func (client *Client) User(ctx context.Context, id int64) (*User, error) {
	user := new(User)
	if err := client.do(ctx, http.MethodGet, "/usuarios/"+pathID(id)+"/", nil, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUser calls 'POST /usuarios/create/'
func (client *Client) CreateUser(ctx context.Context, input *CreateUserInput) error {
	if err := validateInput(input); err != nil {
		return err
	}
	return client.do(ctx, http.MethodPost, "/usuarios/create/", input, nil)
}

// UpdateUser calls 'PUT /usuarios/update/{id}/'
func (client *Client) UpdateUser(ctx context.Context, id int64, input *UpdateUserInput) error {
	if err := validateInput(input); err != nil {
		return err
	}
	return client.do(ctx, http.MethodPut, "/usuarios/update/"+pathID(id)+"/", input, nil)
}

// DeleteUser calls 'DELETE /usuarios/delete/{username}/'
func (client *Client) DeleteUser(ctx context.Context, username string) error {
	return client.do(ctx, http.MethodDelete, "/usuarios/delete/"+url.PathEscape(username)+"/", nil, nil)
}
