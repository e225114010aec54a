// Package analytics aggregates platform usage numbers for the admin
// reporting API.
package analytics

// Overview summarises the whole platform at a glance.
type Overview struct {
	TotalUsers        int        `json:"totalUsers"`
	ActiveUsers       int        `json:"activeUsers"`
	TotalJobs         int        `json:"totalJobs"`
	ActiveJobs        int        `json:"activeJobs"`
	TotalApplications int        `json:"totalApplications"`
	RecentActions     []KeyCount `json:"recentActions"`
}

// DayCount is one bucket of a per-day time series.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// KeyCount is one bucket of a categorical distribution.
type KeyCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// UsersReport breaks down account growth and composition.
type UsersReport struct {
	RegistrationsByDay []DayCount `json:"registrationsByDay"`
	RoleDistribution   []KeyCount `json:"roleDistribution"`
}

// JobsReport breaks down listing volume and moderation state.
type JobsReport struct {
	PostedByDay        []DayCount `json:"postedByDay"`
	StatusDistribution []KeyCount `json:"statusDistribution"`
}

// ApplicationsReport breaks down application volume.
type ApplicationsReport struct {
	SubmittedByDay []DayCount `json:"submittedByDay"`
}
