// Package jobs owns job listings: public browsing, recruiter posting and
// the admin moderation queue.
package jobs

import "time"

// Job listing lifecycle. New listings start pending and only become
// visible to jobseekers once an admin activates them.
const (
	StatusPending  = "pending"
	StatusActive   = "active"
	StatusRejected = "rejected"
)

// Types enumerates the accepted employment types.
var Types = []string{"full-time", "part-time", "contract", "internship", "remote"}

// Job represents a stored listing.
type Job struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Address     string    `json:"address"`
	Type        string    `json:"type"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description"`
	Email       string    `json:"email"`
	Slots       int       `json:"slots"`
	Status      string    `json:"status"`
	RecruiterID int64     `json:"recruiterId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Filters narrows listing queries. Search matches title, company and
// description; Location matches the address column.
type Filters struct {
	Search   string
	Type     string
	Location string
	Status   string
}

// ValidStatus reports whether s is a known lifecycle status.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusActive || s == StatusRejected
}

// ValidType reports whether t is an accepted employment type.
func ValidType(t string) bool {
	for _, known := range Types {
		if known == t {
			return true
		}
	}
	return false
}
