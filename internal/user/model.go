package user

import "time"

const (
	RoleJobseeker = "jobseeker"
	RoleEmployer  = "employer"
	RoleAdmin     = "admin"
)

type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Password      string    `json:"-"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	Phone         string    `json:"phone"`
	Role          string    `json:"role"`
	Avatar        string    `json:"avatar"`
	Location      string    `json:"location"`
	Title         string    `json:"title"`
	Skills        []string  `json:"skills"`
	Experience    string    `json:"experience"`
	Education     string    `json:"education"`
	CompanyName   string    `json:"companyName"`
	Industry      string    `json:"industry"`
	Bio           string    `json:"bio"`
	SavedJobs     []string  `json:"savedJobs"`
	SkippedJobIDs []string  `json:"skippedJobIds"`
	LastLogin     string    `json:"lastLogin"`
	CreatedAt     time.Time `json:"createdAt"`
}

func ValidRole(role string) bool {
	return role == RoleJobseeker || role == RoleEmployer || role == RoleAdmin
}
