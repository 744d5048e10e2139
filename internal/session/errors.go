package session

import "errors"

var (
	// ErrMissingCredentials is returned by Login if the username or password is empty
	ErrMissingCredentials = errors.New("username and password are required")

	// ErrInvalidCredentials is returned by Login if the backend rejected the given credentials
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrMalformedResponse is returned by Login if the backend response lacks tokens or the user record
	ErrMalformedResponse = errors.New("malformed login response")
)
