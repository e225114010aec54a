// Package applications tracks jobseeker applications against listings.
package applications

import "time"

// Application represents a stored application.
type Application struct {
	ID        int64     `json:"id"`
	JobID     int64     `json:"jobId"`
	UserID    int64     `json:"userId"`
	CoverNote string    `json:"coverNote,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// StatusSubmitted is the only lifecycle state an application holds today.
// Recruiters respond out of band via the listed contact email.
const StatusSubmitted = "submitted"

// WithJob joins the listing columns a jobseeker needs to read their
// application history.
type WithJob struct {
	Application
	JobTitle string `json:"jobTitle"`
	Company  string `json:"company"`
}

// WithApplicant joins the account columns a recruiter needs to review
// applicants.
type WithApplicant struct {
	Application
	ApplicantName  string `json:"applicantName"`
	ApplicantEmail string `json:"applicantEmail"`
}
