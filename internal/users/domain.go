// Package users owns the user directory and the administrative account
// management surface.
package users

import "time"

// Profile carries the optional jobseeker/recruiter profile payload.
type Profile struct {
	Company string   `json:"company,omitempty"`
	Title   string   `json:"title,omitempty"`
	Bio     string   `json:"bio,omitempty"`
	Skills  []string `json:"skills,omitempty"`
}

// User represents a stored account. Roles is a set; the policy layer treats
// admin/superadmin > recruiter > jobseeker as precedence when rendering
// navigation, but storage never collapses the set.
type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"-"`
	Roles        []string   `json:"roles"`
	IsActive     bool       `json:"isActive"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	Profile      Profile    `json:"profile"`
}
