// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account. PasswordHash never leaves the server: it is excluded
// from JSON, so neither responses nor cache entries carry it.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Phone        string    `json:"phone,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserUpdate carries optional changes; nil fields are left as they are.
type UserUpdate struct {
	Username *string
	Email    *string
	Password *string
	Phone    *string
}
