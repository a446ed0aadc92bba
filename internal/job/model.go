package job

import "time"

const (
	StatusActive = "active"
	StatusClosed = "closed"
	StatusDraft  = "draft"
)

const (
	TypeFullTime = "Full-time"
	TypePartTime = "Part-time"
	TypeContract = "Contract"
	TypeRemote   = "Remote"
)

type Job struct {
	ID                 string    `json:"id"`
	Slug               string    `json:"slug"`
	Title              string    `json:"title"`
	Company            string    `json:"company"`
	Location           string    `json:"location"`
	Type               string    `json:"type"`
	Category           string    `json:"category"`
	Salary             string    `json:"salary"`
	Description        string    `json:"description"`
	Requirements       []string  `json:"requirements"`
	Benefits           []string  `json:"benefits"`
	PostedDate         string    `json:"postedDate"`
	Deadline           string    `json:"deadline"`
	Status             string    `json:"status"`
	Applicants         int       `json:"applicants"`
	ResponseTime       string    `json:"responseTime"`
	InterviewProcess   string    `json:"interviewProcess"`
	Logo               string    `json:"logo"`
	EmployerID         *string   `json:"employerId"`
	CreatedAt          time.Time `json:"createdAt"`
	CreatedAtHumanised string    `json:"createdAtHumanised"`
}

// SearchFilters are conjunctive, empty fields are skipped.
type SearchFilters struct {
	Keyword  string
	Location string
	Category string
	Type     string
}

type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
	Icon  string `json:"icon"`
}

func ValidType(jobType string) bool {
	switch jobType {
	case TypeFullTime, TypePartTime, TypeContract, TypeRemote:
		return true
	}
	return false
}

// Categories returns the static category list shown on the landing page.
func Categories() []Category {
	return []Category{
		{ID: "tech", Name: "Technology", Count: 245, Icon: "computer"},
		{ID: "design", Name: "Design", Count: 89, Icon: "palette"},
		{ID: "data", Name: "Data Science", Count: 156, Icon: "analytics"},
		{ID: "marketing", Name: "Marketing", Count: 78, Icon: "campaign"},
		{ID: "management", Name: "Management", Count: 112, Icon: "business"},
		{ID: "finance", Name: "Finance", Count: 95, Icon: "account_balance"},
		{ID: "healthcare", Name: "Healthcare", Count: 67, Icon: "local_hospital"},
		{ID: "education", Name: "Education", Count: 43, Icon: "school"},
	}
}
