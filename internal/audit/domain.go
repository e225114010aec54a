// Package audit persists the append-only log of administrative mutations
// and serves the admin log viewer.
package audit

import "time"

// Entry is one immutable audit record: who did what to which target.
type Entry struct {
	ID       int64          `json:"id"`
	ActorID  int64          `json:"actorId"`
	Action   string         `json:"action"`
	TargetID string         `json:"targetId"`
	Details  map[string]any `json:"details,omitempty"`
	At       time.Time      `json:"timestamp"`
}

// EntryWithActor joins the actor's display details for the log viewer.
type EntryWithActor struct {
	Entry
	ActorName  string `json:"actorName"`
	ActorEmail string `json:"actorEmail"`
}

// Filters narrow the log listing.
type Filters struct {
	From    time.Time
	To      time.Time
	Action  string
	ActorID int64
	Page    int
	Limit   int
}
