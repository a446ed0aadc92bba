package application

import "time"

const (
	StatusSubmitted          = "submitted"
	StatusUnderReview        = "under_review"
	StatusInterviewScheduled = "interview_scheduled"
	StatusInterviewed        = "interviewed"
	StatusOffered            = "offered"
	StatusAccepted           = "accepted"
	StatusRejected           = "rejected"
	StatusWithdrawn          = "withdrawn"
)

// Application snapshots jobTitle, company, applicantName and email at
// submission time. They are not re-synced when the job or user changes.
type Application struct {
	ID            string    `json:"id"`
	JobID         string    `json:"jobId"`
	UserID        string    `json:"userId"`
	JobTitle      string    `json:"jobTitle"`
	Company       string    `json:"company"`
	ApplicantName string    `json:"applicantName"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Location      string    `json:"location"`
	CoverLetter   string    `json:"coverLetter"`
	ResumeURL     string    `json:"resumeUrl"`
	Status        string    `json:"status"`
	AppliedDate   string    `json:"appliedDate"`
	LastUpdated   string    `json:"lastUpdated"`
	CreatedAt     time.Time `json:"createdAt"`
}

func ValidStatus(status string) bool {
	switch status {
	case StatusSubmitted, StatusUnderReview, StatusInterviewScheduled, StatusInterviewed,
		StatusOffered, StatusAccepted, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}
