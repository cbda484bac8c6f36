package models

import "strings"

// AuthRequest is the body of both register and login calls.
type AuthRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate rejects blank usernames and passwords.
func (r AuthRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return &ValidationError{Field: "username", Reason: "must not be empty"}
	}
	if r.Password == "" {
		return &ValidationError{Field: "password", Reason: "must not be empty"}
	}
	return nil
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	ID       int64  `json:"id"`
}

// ErrorResponse is the JSON error body of the backend.
type ErrorResponse struct {
	Message string `json:"message"`
}

// User is the signed-in identity kept next to the token.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// User returns the identity part of the response.
func (r AuthResponse) User() User {
	return User{ID: r.ID, Username: r.Username}
}
