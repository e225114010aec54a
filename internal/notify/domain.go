// Package notify delivers in-app notifications and queues the matching
// transactional emails.
package notify

import "time"

// Notification kinds.
const (
	TypeJobRejected = "job_rejected"
)

// Notification represents a stored in-app notification.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}
