package job

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/gosimple/slug"
	"github.com/lib/pq"
	"github.com/segmentio/ksuid"
)

var ErrNotFound = errors.New("job not found")

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike quotes LIKE metacharacters so user input is matched as a
// literal substring.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

const jobColumns = `id, slug, title, company, location, type, category, salary, description, requirements, benefits, posted_date, deadline, status, applicants, response_time, interview_process, logo, employer_id, created_at`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db}
}

// GetActiveJobs returns jobs with status active, most recent first. Draft
// and closed jobs never show up on the public listing.
func (r *Repository) GetActiveJobs() ([]Job, error) {
	return r.queryJobs(`SELECT `+jobColumns+` FROM job WHERE status = $1 ORDER BY created_at DESC`, StatusActive)
}

// GetJobsByEmployer returns every job owned by the employer, drafts and
// closed postings included.
func (r *Repository) GetJobsByEmployer(employerID string) ([]Job, error) {
	return r.queryJobs(`SELECT `+jobColumns+` FROM job WHERE employer_id = $1 ORDER BY created_at DESC`, employerID)
}

func (r *Repository) SearchJobs(filters SearchFilters) ([]Job, error) {
	query := `SELECT ` + jobColumns + ` FROM job WHERE status = $1`
	args := []interface{}{StatusActive}
	if filters.Keyword != "" {
		args = append(args, "%"+escapeLike(filters.Keyword)+"%")
		n := len(args)
		query += fmt.Sprintf(` AND (title ILIKE $%d OR company ILIKE $%d OR description ILIKE $%d)`, n, n, n)
	}
	if filters.Location != "" {
		args = append(args, "%"+escapeLike(filters.Location)+"%")
		query += fmt.Sprintf(` AND location ILIKE $%d`, len(args))
	}
	if filters.Category != "" {
		args = append(args, filters.Category)
		query += fmt.Sprintf(` AND LOWER(category) = LOWER($%d)`, len(args))
	}
	if filters.Type != "" {
		args = append(args, filters.Type)
		query += fmt.Sprintf(` AND LOWER(type) = LOWER($%d)`, len(args))
	}
	query += ` ORDER BY created_at DESC`
	return r.queryJobs(query, args...)
}

func (r *Repository) GetJobByID(id string) (Job, error) {
	j := Job{}
	row := r.db.QueryRow(`SELECT `+jobColumns+` FROM job WHERE id = $1`, id)
	err := scanJob(row, &j)
	if err == sql.ErrNoRows {
		return j, ErrNotFound
	}
	if err != nil {
		return j, err
	}
	return j, nil
}

// CreateJob inserts the posting with a fresh ksuid and slug. Status is
// forced to active and the applicant counter starts at zero regardless of
// what the caller sent.
func (r *Repository) CreateJob(j *Job) error {
	jobID, err := ksuid.NewRandom()
	if err != nil {
		return err
	}
	j.ID = jobID.String()
	j.CreatedAt = time.Now().UTC()
	j.Slug = slug.Make(fmt.Sprintf("%s %s %d", j.Title, j.Company, j.CreatedAt.Unix()))
	j.Status = StatusActive
	j.Applicants = 0
	if j.Category == "" {
		j.Category = "Technology"
	}
	if j.PostedDate == "" {
		j.PostedDate = j.CreatedAt.Format("2006-01-02")
	}
	if j.Requirements == nil {
		j.Requirements = []string{}
	}
	if j.Benefits == nil {
		j.Benefits = []string{}
	}
	j.CreatedAtHumanised = humanize.Time(j.CreatedAt)
	var employerID sql.NullString
	if j.EmployerID != nil {
		employerID = sql.NullString{String: *j.EmployerID, Valid: true}
	}
	_, err = r.db.Exec(
		`INSERT INTO job (id, slug, title, company, location, type, category, salary, description, requirements, benefits, posted_date, deadline, status, applicants, response_time, interview_process, logo, employer_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		j.ID,
		j.Slug,
		j.Title,
		j.Company,
		j.Location,
		j.Type,
		j.Category,
		j.Salary,
		j.Description,
		pq.Array(j.Requirements),
		pq.Array(j.Benefits),
		j.PostedDate,
		j.Deadline,
		j.Status,
		j.Applicants,
		j.ResponseTime,
		j.InterviewProcess,
		j.Logo,
		employerID,
		j.CreatedAt,
	)
	return err
}

// UpdateJob writes the mutable posting fields. The applicant counter is
// owned by the application repository and is never set here.
func (r *Repository) UpdateJob(j *Job) error {
	res, err := r.db.Exec(
		`UPDATE job SET title = $2, company = $3, location = $4, type = $5, category = $6, salary = $7, description = $8, requirements = $9, benefits = $10, posted_date = $11, deadline = $12, status = $13, response_time = $14, interview_process = $15, logo = $16 WHERE id = $1`,
		j.ID,
		j.Title,
		j.Company,
		j.Location,
		j.Type,
		j.Category,
		j.Salary,
		j.Description,
		pq.Array(j.Requirements),
		pq.Array(j.Benefits),
		j.PostedDate,
		j.Deadline,
		j.Status,
		j.ResponseTime,
		j.InterviewProcess,
		j.Logo,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteJob removes the posting only. Applications referencing it are left
// in place, orphaned references are tolerated.
func (r *Repository) DeleteJob(id string) error {
	res, err := r.db.Exec(`DELETE FROM job WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetJobTitlesForProfile merges live active-posting counts into the curated
// title list. See titles.go for the ordering contract.
func (r *Repository) GetJobTitlesForProfile() ([]TitleCount, error) {
	rows, err := r.db.Query(`SELECT title, COUNT(*) FROM job WHERE status = $1 GROUP BY title`, StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	countByTitle := map[string]int{}
	for rows.Next() {
		var title string
		var count int
		if err := rows.Scan(&title, &count); err != nil {
			return nil, err
		}
		countByTitle[title] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return mergeTitleCounts(countByTitle), nil
}

func (r *Repository) queryJobs(query string, args ...interface{}) ([]Job, error) {
	jobs := []Job{}
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return jobs, err
	}
	defer rows.Close()
	for rows.Next() {
		j := Job{}
		if err := scanJob(rows, &j); err != nil {
			return jobs, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner, j *Job) error {
	var employerID sql.NullString
	err := row.Scan(&j.ID, &j.Slug, &j.Title, &j.Company, &j.Location, &j.Type, &j.Category, &j.Salary, &j.Description, pq.Array(&j.Requirements), pq.Array(&j.Benefits), &j.PostedDate, &j.Deadline, &j.Status, &j.Applicants, &j.ResponseTime, &j.InterviewProcess, &j.Logo, &employerID, &j.CreatedAt)
	if err != nil {
		return err
	}
	if employerID.Valid {
		j.EmployerID = &employerID.String
	}
	j.CreatedAtHumanised = humanize.Time(j.CreatedAt)
	return nil
}
