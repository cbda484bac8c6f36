// Package models holds the records persisted by the development backend.
package models

import "time"

// User is an account. PasswordHash is a bcrypt hash.
type User struct {
	ID           int64     `json:"id"`
	UserName     string    `json:"username"`
	PasswordHash []byte    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}
