// Package auth implements credential checks and the browser sign-in,
// sign-up and sign-out flows.
package auth

import "time"

// User is the account view needed for authentication decisions.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Roles        []string
	IsActive     bool
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
